package generator

var userNames = []string{
	"Avery", "Blake", "Casey", "Devon", "Emery", "Finley",
	"Harper", "Jordan", "Kendall", "Logan", "Morgan", "Quinn",
	"Reese", "Rowan", "Sage", "Taylor",
}

var deckAdjectives = []string{
	"Relentless", "Gilded", "Feral", "Arcane", "Rusted", "Sunlit",
	"Grim", "Tidal", "Ashen", "Verdant", "Hollow", "Storm-Touched",
}

var deckNouns = []string{
	"Horde", "Council", "Covenant", "Menagerie", "Armada", "Grove",
	"Legion", "Syndicate", "Choir", "Swarm", "Bastion", "Reckoning",
}

var commanderNames = []string{
	"Thalor, Dawn Arbiter", "Vexina of the Deep", "Korrath Bloodmane",
	"Seraphel, Wind Herald", "Mycel the Sporelord", "Ixara, Flame Regent",
	"Oldun Stonefather", "Nyssa of the Veil",
}
