// Package pickgen 提供基于注解的类型裁剪代码生成器。
//
// # 概述
//
// pickgen 支持三个注解：
//   - @Pick: 从原始类型中保留指定成员生成新类型
//   - @Omit: 从原始类型中去掉指定成员生成新类型
//   - @Derive: 为紧随其后的下一个 @Pick/@Omit 生成的类型附加能力注解
//
// 原始类型可以是结构体，也可以是带常量取值的基础类型（枚举）。
//
// # 基本用法
//
//	// @Derive(Setter)
//	// @Pick(UserBasic {ID, Name})
//	// @Omit(unexport userSafe {Password})
//	type User struct {
//	    ID       uint64
//	    Name     string
//	    Password string
//	}
//
// 运行 typeutils 后在 user_pick.go 中生成：
//
//	// UserBasic 从 User Pick 生成
//	// @Setter
//	type UserBasic struct {
//	    ID   uint64
//	    Name string
//	}
//
//	// userSafe 从 User Omit 生成
//	type userSafe struct {
//	    ID   uint64
//	    Name string
//	}
//
// 以及 From 方法和 NewUserBasic/newUserSafe 构造函数。
//
// # 注解参数
//
//	@Pick([export|unexport] Name[T any] {A, unexport B, export C})
//
// 类型名前的 export/unexport 控制生成类型的可见性，成员前的修饰符控制单个成员的可见性。
// [T any] 为可选的类型参数列表。成员必须存在于原始类型中且不能重复。
//
// # 枚举
//
//	// @Omit(LiveStatus {StatusDeleted})
//	type Status int
//
//	const (
//	    StatusActive Status = iota + 1
//	    StatusDeleted
//	)
//
// 生成 LiveStatus 类型、LiveStatusActive 常量、LiveStatusValues、ToStatus 以及 From 方法。
//
// # 输出文件
//
// 默认输出到 $FILE_pick.go，可以通过包级指令修改：
//
//	//go:typeutils: plugin:pickgen -output $PACKAGE_types
package pickgen
