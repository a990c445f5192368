package entity

// Credentials - логин и пароль работодателя
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EmployerSession - контекст сессии работодателя.
// Передается явно в каждую операцию, которой нужна авторизация на бэкенде.
type EmployerSession struct {
	ID    string
	Token string
}

// IsZero проверяет, что сессия не содержит токена
func (s *EmployerSession) IsZero() bool {
	return s == nil || s.Token == ""
}
