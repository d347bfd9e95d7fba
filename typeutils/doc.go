// Package typeutils 根据类型注释中的注解生成原始类型的子集类型
//
// 支持的注解：
//
//	@Pick([export|unexport] Name[类型参数] {成员, export 成员, ...})   保留列出的成员
//	@Omit([export|unexport] Name[类型参数] {成员, ...})                 去掉列出的成员
//	@Derive(A, B)                                                       为下一个 @Pick/@Omit 附加能力注解
//
// 其他注解原样复制到每个生成的类型上。
//
// 示例：
//
//	// @Gsql
//	// @Derive(Setter)
//	// @Pick(UserBasic {ID, export name})
//	// @Omit(unexport UserPublic {Password})
//	type User struct {
//		ID       uint64
//		name     string
//		Password string
//	}
//
// 生成 UserBasic{ID, Name} 以及 userPublic{ID, name}。两者的 Annotations 都以透传的 @Gsql 开头；
// UserBasic 最后还有一个合成的 @Derive(Setter) 注解，能力列表也可以通过 TypeDecl.Capabilities 取得。
// 如何输出能力由调用方决定，pickgen 把它写成 // @Setter 注释行。
//
// 结构体和枚举（基础类型上的具名类型及其常量）支持两种操作；
// 定长数组和 struct{} 不支持；接口、函数、map、别名等类型直接拒绝。
//
// 本包只做纯转换：Parse 解析注解，Request.Validate 校验选择，
// Request.Synthesize 生成类型声明，Generate 串联三步。
package typeutils
