package reset

import "time"

type Method string

const MethodEmail Method = "email"
const MethodSMS Method = "sms"

// Receipt описывает имитацию отправки инструкций по сбросу пароля
type Receipt struct {
	Email       string    `json:"email"`
	Method      Method    `json:"method"`
	Target      string    `json:"target"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Token - одноразовый токен сброса пароля
type Token struct {
	Token     string     `json:"token" db:"token"`
	Email     string     `json:"email" db:"email"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at,omitempty"`
}

func (t *Token) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
