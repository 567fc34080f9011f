package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&UserInventory{},
	&PendingCreature{},
	&Challenge{},
	&BossState{},
	&BossAttack{},
	&UserAttackStats{},
	&GymBattle{},
	&GymAttackResult{},
	&GymParticipant{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
