package util

import "strconv"

// MustParseUint 将路径参数转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// QueryInt 解析查询参数为整数，缺失或非法时返回默认值
func QueryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
