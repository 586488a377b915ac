package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&VerificationCode{},
		&PendingSignup{},
		&Chat{},
		&Message{},
		&CarPart{},
		&OilChange{},
	}
}
