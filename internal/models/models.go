package models

// All lists every entity for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{},
		&Photo{},
		&Like{},
		&Comment{},
		&Follow{},
		&Notification{},
	}
}
