package entity

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&Group{},
		&User{},
		&UserGroup{},
		&Category{},
		&Sponsor{},
		&News{},
		&NewsImage{},
		&Comment{},
		&NewsLike{},
	}
}
