package catalog

import "github.com/e9games/creaturebot/model"

// Items is the adventure drop table.
var Items = []model.AdventureItem{
	{Name: "Rusty Sword", Type: model.ItemWeapon, StatBonus: 1, Description: "An old sword that increases attack by 1", Emoji: "⚔️", Quantity: 1},
	{Name: "Iron Dagger", Type: model.ItemWeapon, StatBonus: 2, Description: "A sharp dagger that increases attack by 2", Emoji: "🗡️", Quantity: 1},
	{Name: "Steel Blade", Type: model.ItemWeapon, StatBonus: 3, Description: "A powerful blade that increases attack by 3", Emoji: "⚔️", Quantity: 1},

	{Name: "Leather Armor", Type: model.ItemArmor, StatBonus: 1, Description: "Basic armor that increases defense by 1", Emoji: "🛡️", Quantity: 1},
	{Name: "Chain Mail", Type: model.ItemArmor, StatBonus: 2, Description: "Strong armor that increases defense by 2", Emoji: "🛡️", Quantity: 1},
	{Name: "Plate Armor", Type: model.ItemArmor, StatBonus: 3, Description: "Heavy armor that increases defense by 3", Emoji: "🛡️", Quantity: 1},

	{Name: "Health Potion", Type: model.ItemFood, StatBonus: 10, Description: "A basic healing potion that restores 10 HP", Emoji: "🧪", Quantity: 1},
	{Name: "Greater Health Potion", Type: model.ItemFood, StatBonus: 15, Description: "A powerful healing potion that restores 15 HP", Emoji: "🍯", Quantity: 1},
	{Name: "Elixir of Life", Type: model.ItemFood, StatBonus: 20, Description: "A rare elixir that restores 20 HP", Emoji: "💎", Quantity: 1},
}
