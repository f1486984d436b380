// Command seeder fills the products index with a generated demo catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/config"
	"github.com/svbuh/product-search-with-cache/internal/domain"
	logpkg "github.com/svbuh/product-search-with-cache/internal/logger"
	osTransport "github.com/svbuh/product-search-with-cache/internal/transport/opensearch"
)

const bulkBatchSize = 100

var categories = []string{
	"Werkzeuge",
	"Befestigungstechnik",
	"Elektro",
	"Garten",
	"Farben",
	"Baustoffe",
	"Sanitär",
	"Holz",
	"Maschinen",
	"Sicherheit",
}

var brands = []string{
	"Bosch", "Makita", "Metabo", "DeWalt", "Black+Decker",
	"Fischer", "Würth", "Hilti", "Knipex", "Wera",
	"Gardena", "Kärcher", "Stihl", "Weber", "Wolfcraft",
}

type template struct {
	name string
	tags []string
}

var productTemplates = map[string][]template{
	"Werkzeuge": {
		{"Akkuschrauber", []string{"Akku", "Schrauben", "Bohren"}},
		{"Hammer", []string{"Schlagen", "Nageln"}},
		{"Schraubendreher-Set", []string{"Schrauben", "Set"}},
		{"Zange", []string{"Greifen", "Schneiden"}},
		{"Säge", []string{"Schneiden", "Holz"}},
		{"Wasserwaage", []string{"Messen", "Ausrichten"}},
		{"Maßband", []string{"Messen", "Länge"}},
		{"Winkelschleifer", []string{"Schleifen", "Schneiden", "Metall"}},
	},
	"Befestigungstechnik": {
		{"Dübel", []string{"Befestigung", "Wand"}},
		{"Schrauben", []string{"Befestigung", "Holz", "Metall"}},
		{"Anker", []string{"Schwerlast", "Beton"}},
		{"Nagel", []string{"Befestigung", "Holz"}},
		{"Klebstoff", []string{"Kleben", "Montage"}},
		{"Silikon", []string{"Abdichten", "Fugen"}},
	},
	"Elektro": {
		{"Kabel", []string{"Strom", "Verbindung"}},
		{"Steckdose", []string{"Strom", "Anschluss"}},
		{"Schalter", []string{"Strom", "Steuerung"}},
		{"LED-Lampe", []string{"Licht", "Energiesparend"}},
		{"Verteilerkasten", []string{"Strom", "Sicherung"}},
		{"Bewegungsmelder", []string{"Sensor", "Licht", "Sicherheit"}},
	},
	"Garten": {
		{"Rasenmäher", []string{"Rasen", "Schneiden"}},
		{"Gartenschlauch", []string{"Wasser", "Bewässerung"}},
		{"Spaten", []string{"Graben", "Erde"}},
		{"Gießkanne", []string{"Wasser", "Pflanzen"}},
		{"Heckenschere", []string{"Schneiden", "Hecke"}},
		{"Blumenerde", []string{"Pflanzen", "Erde"}},
	},
	"Farben": {
		{"Wandfarbe", []string{"Streichen", "Innen"}},
		{"Lack", []string{"Streichen", "Holz", "Metall"}},
		{"Grundierung", []string{"Vorbereitung", "Streichen"}},
		{"Pinsel", []string{"Streichen", "Werkzeug"}},
		{"Farbroller", []string{"Streichen", "Werkzeug"}},
		{"Abdeckfolie", []string{"Schutz", "Streichen"}},
	},
}

var materials = []string{"Stahl", "Holz", "Kunststoff", "Aluminium", "Beton", "Stein"}

var sizes = []string{"S", "M", "L", "XL", "6mm", "8mm", "10mm", "12mm", "16mm", "20mm"}

var descriptionForms = []string{
	"Hochwertiger %s für professionelle Anwendungen im Bereich %s.",
	"Robuster und langlebiger %s, ideal für Heimwerker und Profis.",
	"Premium %s mit ausgezeichneter Verarbeitung und langer Lebensdauer.",
	"Vielseitig einsetzbarer %s für verschiedene Arbeiten im %s-Bereich.",
	"Ergonomischer %s für komfortables und effizientes Arbeiten.",
}

func main() {
	count := flag.Int("count", 500, "number of products to generate")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducible catalogs")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := osTransport.New(osTransport.Config{
		Addresses:  cfg.OpenSearch.Addresses,
		Username:   cfg.OpenSearch.Username,
		Password:   cfg.OpenSearch.Password,
		Index:      cfg.OpenSearch.Index,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    30 * time.Second,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}

	ctx := context.Background()
	if err := catalog.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure index", zap.Error(err))
	}

	products := generateProducts(*count, rand.New(rand.NewSource(*seed)))

	for start := 0; start < len(products); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(products) {
			end = len(products)
		}
		if err := catalog.BulkIndex(ctx, products[start:end]); err != nil {
			logger.Fatal("Bulk indexing failed", zap.Int("offset", start), zap.Error(err))
		}
		logger.Info("Indexed batch", zap.Int("from", start), zap.Int("to", end))
	}

	logger.Info("Seeding complete", zap.Int("products", len(products)))
}

func generateProducts(count int, rng *rand.Rand) []domain.Product {
	products := make([]domain.Product, 0, count)

	for i := 0; i < count; i++ {
		category := categories[rng.Intn(len(categories))]
		templates, ok := productTemplates[category]
		if !ok {
			templates = productTemplates["Werkzeuge"]
		}
		tpl := templates[rng.Intn(len(templates))]
		brand := brands[rng.Intn(len(brands))]
		material := materials[rng.Intn(len(materials))]
		size := sizes[rng.Intn(len(sizes))]

		name := brand + " " + tpl.name
		if rng.Float64() > 0.5 {
			name += " Professional"
		}

		attributes := map[string]any{
			"material": material,
			"size":     size,
			"weight":   fmt.Sprintf("%.3fkg", rng.Float64()*5),
			"warranty": fmt.Sprintf("%d Jahre", rng.Intn(3)+1),
		}
		if category == "Elektro" || category == "Maschinen" {
			attributes["power"] = fmt.Sprintf("%dW", rng.Intn(2000))
		}

		tags := append(append([]string{}, tpl.tags...), brand, material, category)

		products = append(products, domain.Product{
			ID:            fmt.Sprintf("prod-%d", i+1),
			Name:          name,
			Description:   describe(rng, tpl.name, category),
			Category:      category,
			Subcategory:   tpl.name,
			Brand:         brand,
			Price:         float64(rng.Intn(50000))/100 + 5,
			Attributes:    attributes,
			Tags:          tags,
			InStock:       rng.Float64() > 0.2,
			EAN:           generateEAN(rng),
			ArticleNumber: generateArticleNumber(rng),
		})
	}

	return products
}

func describe(rng *rand.Rand, productName, category string) string {
	form := descriptionForms[rng.Intn(len(descriptionForms))]
	if strings.Count(form, "%s") == 2 {
		return fmt.Sprintf(form, productName, category)
	}
	return fmt.Sprintf(form, productName)
}

func generateEAN(rng *rand.Rand) string {
	digits := make([]byte, 11)
	for i := range digits {
		digits[i] = byte('0' + rng.Intn(10))
	}
	return "40" + string(digits)
}

func generateArticleNumber(rng *rand.Rand) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	out := make([]byte, 9)
	for i := range out {
		out[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(out)
}
