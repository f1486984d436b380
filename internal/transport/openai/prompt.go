package openai

import (
	"fmt"
	"strings"

	"github.com/svbuh/product-search-with-cache/internal/domain"
)

const enhanceSystemPrompt = `Du bist ein Baumarkt-Suchexperte. Analysiere Suchanfragen und verbessere sie. Antworte ausschließlich mit einem JSON-Objekt.`

const rerankSystemPrompt = `Du bist ein Baumarkt-Produktexperte. Bewerte die Relevanz von Produkten für eine Suchanfrage. Antworte ausschließlich mit einem JSON-Array.`

func enhancePrompt(query string) string {
	return fmt.Sprintf(`Suchanfrage: %q

Gib eine JSON-Antwort zurück mit:
- enhancedQuery: Verbesserte Suchanfrage mit relevanten technischen Begriffen
- categories: Liste der wahrscheinlichen Produktkategorien (z.B. ["Werkzeuge", "Schrauben"])
- attributes: Wichtige Produktattribute (z.B. {"material": "Stahl", "größe": "M8"})
- intent: Suchintention (search/browse/specific/comparison)

Beispiel für "Dübel für Betonwand":
{
  "enhancedQuery": "Betondübel Schwerlastdübel Betonanker Wanddübel",
  "categories": ["Befestigungstechnik", "Dübel"],
  "attributes": {"material": "Beton", "anwendung": "Schwerlast"},
  "intent": "specific"
}`, query)
}

func rerankPrompt(query string, candidates []domain.RankingCandidate) string {
	var lines strings.Builder
	for i, c := range candidates {
		price := "unbekannt"
		if c.Price > 0 {
			price = fmt.Sprintf("%.2f", c.Price)
		}
		fmt.Fprintf(&lines, "%d. [%s] %s - %s (Kategorie: %s, Preis: €%s)\n",
			i+1, c.ID, c.Name, c.Description, c.Category, price)
	}

	return fmt.Sprintf(`Suchanfrage: %q

WICHTIG: Wenn die Suchanfrage Begriffe wie "günstig", "preiswert", "billig" enthält, MUSS der Preis ein Hauptkriterium sein!

Produkte:
%s
Gib eine JSON-Antwort zurück mit einem Array von:
{
  "productId": "id",
  "relevanceScore": 0-100
}

Verwende als productId exakt die id in eckigen Klammern. Jedes Produkt muss genau einmal vorkommen.

Bewertungskriterien:
- Produkttyp-Übereinstimmung (passt das Produkt zur Suchanfrage?)
- Preis (bei Begriffen wie "günstig": niedrigere Preise = höhere Scores!)
- Verfügbarkeit
- Markenqualität im Verhältnis zum Preis

Sortiere nach Relevanz (höchster Score zuerst).`, query, lines.String())
}
