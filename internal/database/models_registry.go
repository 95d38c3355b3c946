package database

import "commune/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Connection{},
		&models.UserBlock{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Post{},
		&models.PostMedia{},
		&models.SharedPost{},
		&models.Comment{},
		&models.SharedPostComment{},
		&models.Reaction{},
		&models.SavedPost{},
		&models.Story{},
		&models.StoryView{},
		&models.StoryReaction{},
		&models.Notification{},
	}
}
