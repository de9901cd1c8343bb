// Package varint 实现 7 位分组、小端序的变长整数编码。
//
// 每个字节的低 7 位存放数据，最高位为续位标志（置 1 表示后面还有字节）。
// 有符号整数先经过 zig-zag 变换（0,-1,1,-2,2,... 映射为 0,1,2,3,4,...）
// 再按无符号编码。32 位与 64 位是两套独立的操作，不做隐式扩展：
// 32 位最多 5 个字节，64 位最多 10 个字节，超过即视为 ErrMalformedVarint。
package varint
