package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAttributes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "numbered list before Legendary",
			text: "1. Intellect 2. Luck 3. Versatility 4. Crit Legendary",
			want: "Attributes: 1. Intellect  2. Luck  3. Versatility  4. Crit",
		},
		{
			name: "numbered list at end of text",
			text: "Stats priority 1. Luck 2. Crit 3. Intellect 4. Versatility",
			want: "Attributes: 1. Luck  2. Crit  3. Intellect  4. Versatility",
		},
		{
			name: "numbered list followed by period",
			text: "1. Luck 2. Crit 3. Intellect 4. Versatility. Next section",
			want: "Attributes: 1. Luck  2. Crit  3. Intellect  4. Versatility",
		},
		{
			name: "last item runs into Legendary marker",
			text: "1. Intellect 2. Luck 3. Versatility 4. CritLegendary, then more",
			want: "Attributes: 1. Intellect  2. Luck  3. Versatility  4. Crit",
		},
		{
			name: "numbering lost in normalization",
			text: "Attributes Intellect Luck Versatility Crit Legendary Affix",
			want: "Attributes: 1. Intellect  2. Luck  3. Versatility  4. Crit",
		},
		{
			name: "vocabulary fallback is case insensitive",
			text: "intellect luck versatility crit",
			want: "Attributes: 1. intellect  2. luck  3. versatility  4. crit",
		},
		{
			name: "numbered list wins over vocabulary",
			text: "1. Luck 2. Crit 3. Intellect 4. Versatility. Intellect Luck Versatility Crit",
			want: "Attributes: 1. Luck  2. Crit  3. Intellect  4. Versatility",
		},
		{
			name: "unbounded last item is rejected",
			text: "1. A 2. B 3. C 4. D, more",
			want: "",
		},
		{
			name: "nothing to find",
			text: "This guide has no attribute section.",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAttributes(tt.text))
		})
	}
}

func TestExtractAffixes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "rationale and narrative ranking",
			text: "For legendary affixes, focus on Cast Speed, then MATK, and Intellect as the last. Celestial",
			want: []string{
				"Legendary affix: Cast Speed, then MATK, and Intellect as the last",
				"Legendary priority: 1. Cast Speed  2. MATK  3. Intellect",
			},
		},
		{
			name: "rationale bounded by Celestial",
			text: "For legendary affixes, focus on raw damage Celestial Embeds",
			want: []string{"Legendary affix: raw damage"},
		},
		{
			name: "numbered ranking",
			text: "Legendary Affix 1. Cast Speed 2. MATK 3. Intellect Celestial Embeds",
			want: []string{"Legendary priority: 1. Cast Speed  2. MATK  3. Intellect"},
		},
		{
			name: "numbered ranking with free text second slot",
			text: "1. Ranged Damage 2. Attack SPD or Crit 3. Luck.",
			want: []string{"Legendary priority: 1. Ranged Damage  2. Attack SPD or Crit  3. Luck"},
		},
		{
			name: "numbered ranking rejects unknown first affix",
			text: "1. Block 2. MATK 3. Intellect",
			want: nil,
		},
		{
			name: "narrative ranking without rationale",
			text: "Always focus on Ranged Damage, then Attack SPD, and Luck as the last resort",
			want: []string{"Legendary priority: 1. Ranged Damage  2. Attack SPD  3. Luck"},
		},
		{
			name: "numbered ranking wins over narrative",
			text: "1. MATK 2. Cast Speed 3. Luck. focus on A, then B, and C as the last",
			want: []string{"Legendary priority: 1. MATK  2. Cast Speed  3. Luck"},
		},
		{
			name: "nothing to find",
			text: "Modules and Emblems are covered elsewhere.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAffixes(tt.text))
		})
	}
}

func TestExtractConsumables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Consumables
	}{
		{
			name: "food and serum with To learn terminator",
			text: "Food: Roast Fish Serum: Swift Tonic To learn more...",
			want: Consumables{Food: "Roast Fish", Serum: "Swift Tonic"},
		},
		{
			name: "Life Skills terminator",
			text: "Food: Spicy Stew Serum: Focus Draught Life Skills guide",
			want: Consumables{Food: "Spicy Stew", Serum: "Focus Draught"},
		},
		{
			name: "Culinary terminator without spaces around colons",
			text: "Food:Grilled Eel Serum:Focus Serum Culinary",
			want: Consumables{Food: "Grilled Eel", Serum: "Focus Serum"},
		},
		{
			name: "serum runs to end of text",
			text: "serum : Swift Tonic ",
			want: Consumables{Serum: "Swift Tonic"},
		},
		{
			name: "food without serum marker",
			text: "Food: Roast Fish and nothing else",
			want: Consumables{},
		},
		{
			name: "no markers",
			text: "No consumables listed",
			want: Consumables{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractConsumables(tt.text))
		})
	}
}

func TestExtractGearing_OnlyPriorityLines(t *testing.T) {
	text := "Gearing Embeds: slot anything you like. Attributes Intellect Luck Versatility Crit " +
		"Legendary For legendary affixes, focus on Cast Speed, then MATK, and Intellect as the last. " +
		"Modules are a long paragraph we never want."

	got := ExtractGearing(text)

	assert.Equal(t,
		"Attributes: 1. Intellect  2. Luck  3. Versatility  4. Crit\n"+
			"Legendary affix: Cast Speed, then MATK, and Intellect as the last\n"+
			"Legendary priority: 1. Cast Speed  2. MATK  3. Intellect",
		got)
	assert.NotContains(t, got, "Modules")
	assert.NotContains(t, got, "Embeds")
}

func TestExtractGearing_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractGearing("nothing here"))
}
