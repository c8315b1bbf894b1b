package util

import "strings"

// CountWords 按空白分词统计非空词数，项目字数始终由内容重新计算得出
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// UsernameFromEmail 取邮箱 @ 前缀作为默认用户名
func UsernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
