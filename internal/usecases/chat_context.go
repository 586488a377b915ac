package usecases

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"mechamind.backend/internal/domain/entities"
)

//go:embed prompts/mechanic_system.txt
var mechanicSystemPrompt string

const (
	orderContact = "0665543710"

	heavyRule = "═══════════════════════════════════════════════════════════"
	lightRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

	emptyInventoryBlock = "\n\n⚠️ NO SPARE PARTS IN INVENTORY\nCurrently, we have no spare parts in stock. Do NOT recommend any parts to customers.\n\n"
	inventoryErrorBlock = "\n\n⚠️ ERROR: Unable to load spare parts inventory. Do NOT recommend any parts.\n\n"
)

// SystemPrompt joins the fixed mechanic prompt with an inventory block.
func SystemPrompt(parts []*entities.CarPart, loadErr error) string {
	return mechanicSystemPrompt + RenderInventory(parts, loadErr)
}

// RenderInventory renders the in-stock snapshot the model may recommend from.
func RenderInventory(parts []*entities.CarPart, loadErr error) string {
	if loadErr != nil {
		return inventoryErrorBlock
	}
	if len(parts) == 0 {
		return emptyInventoryBlock
	}

	var b strings.Builder
	b.WriteString("\n\n" + heavyRule + "\n")
	b.WriteString("📦 COMPLETE SPARE PARTS INVENTORY - READ CAREFULLY\n")
	b.WriteString(heavyRule + "\n\n")
	b.WriteString("⚠️ CRITICAL INSTRUCTIONS:\n")
	b.WriteString("- This is the COMPLETE list of ALL parts we have in stock\n")
	b.WriteString("- You MUST ONLY recommend parts from this list\n")
	b.WriteString("- If a part is NOT listed here, it is NOT available\n")
	b.WriteString("- NEVER suggest parts outside this inventory\n")
	b.WriteString("- NEVER invent prices or availability\n\n")
	fmt.Fprintf(&b, "🛒 AVAILABLE PARTS (%d items):\n\n", len(parts))

	for i, p := range parts {
		b.WriteString(lightRule + "\n")
		fmt.Fprintf(&b, "%d. 📦 %s\n", i+1, p.NameEn)
		fmt.Fprintf(&b, "   🇩🇿 Arabic: %s\n", p.NameAr)
		fmt.Fprintf(&b, "   🇫🇷 French: %s\n", p.NameFr)
		fmt.Fprintf(&b, "   📁 Category: %s\n", p.Category)
		fmt.Fprintf(&b, "   💰 Price: %s دج (DZD)\n", strconv.FormatFloat(p.PriceDZD, 'f', -1, 64))
		fmt.Fprintf(&b, "   🏢 Brand: %s\n", orDefault(p.Brand.String, entities.DefaultPartBrand))
		fmt.Fprintf(&b, "   🚗 Compatible with: %s\n", orDefault(p.Compatible.String, entities.DefaultPartCompatible))
		fmt.Fprintf(&b, "   📊 Stock Quantity: %d units available\n", p.StockCount)
		if p.Description.Valid && p.Description.String != "" {
			fmt.Fprintf(&b, "   📝 Description: %s\n", p.Description.String)
		}
		b.WriteString("\n")
	}

	b.WriteString(lightRule + "\n")
	b.WriteString("📞 ORDER CONTACT: " + orderContact + "\n")
	b.WriteString(heavyRule + "\n\n")
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// lastQuestion returns the most recent user turn, falling back to the default title text.
func lastQuestion(turns []entities.ConversationTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == entities.RoleUser {
			if strings.TrimSpace(turns[i].Content) == "" {
				break
			}
			return turns[i].Content
		}
	}
	return entities.DefaultChatTitle
}
