package postgres

// Str dereferences a nullable text column of a LEFT JOIN.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
