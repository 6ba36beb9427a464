// Command seed generates a synthetic catalog and interaction log for local
// development: products go to the Solr index, interactions to a JSON file or
// the Postgres interactions table.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/internal/store"
	"github.com/shopstream/recommender/pkg/models"
)

var categories = []string{"Electronics", "Books", "Clothing", "Home & Kitchen", "Sports"}

var brands = []string{"BrandA", "BrandB", "BrandC", "BrandD", "BrandE"}

var productTypes = map[string][]string{
	"Electronics":    {"Laptop", "Smartphone", "Tablet", "Headphones", "Camera"},
	"Books":          {"Fiction Novel", "Science Book", "Biography", "Cookbook", "Travel Guide"},
	"Clothing":       {"T-Shirt", "Jeans", "Dress", "Jacket", "Shoes"},
	"Home & Kitchen": {"Blender", "Coffee Maker", "Vacuum", "Lamp", "Bed Sheet"},
	"Sports":         {"Basketball", "Yoga Mat", "Dumbbells", "Tennis Racket", "Running Shoes"},
}

var tagPool = []string{"bestseller", "new", "trending", "premium", "budget-friendly"}

func main() {
	numProducts := flag.Int("products", 1000, "number of products to generate")
	numUsers := flag.Int("users", 500, "number of users to generate")
	perUser := flag.Int("interactions-per-user", 20, "interactions per user")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	output := flag.String("out", "interactions.json", "interaction log output file, used with the file source")
	skipSolr := flag.Bool("skip-solr", false, "generate data without posting products to Solr")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rng := rand.New(rand.NewSource(*seed))
	ctx := context.Background()

	products := generateProducts(rng, *numProducts)
	logger.WithField("products", len(products)).Info("Catalog generated")

	if !*skipSolr {
		if err := postToSolr(ctx, cfg.Solr.URL, products); err != nil {
			logger.WithError(err).Fatal("Failed to index products in Solr")
		}
		logger.Info("Products indexed in Solr")
	}

	interactions := generateInteractions(rng, products, *numUsers, *perUser)
	logger.WithField("interactions", len(interactions)).Info("Interaction log generated")

	if err := writeInteractions(ctx, cfg, logger, *output, interactions); err != nil {
		logger.WithError(err).Fatal("Failed to write interactions")
	}
	logger.Info("Seed data written")
}

func generateProducts(rng *rand.Rand, n int) []models.Product {
	products := make([]models.Product, 0, n)
	for i := 1; i <= n; i++ {
		category := categories[rng.Intn(len(categories))]
		productType := productTypes[category][rng.Intn(len(productTypes[category]))]
		brand := brands[rng.Intn(len(brands))]

		p := models.Product{
			ID:              fmt.Sprintf("PROD%05d", i),
			Title:           norm.NFC.String(fmt.Sprintf("%s %s - Model %d", brand, productType, i)),
			Description:     norm.NFC.String(fmt.Sprintf("High quality %s from %s. Perfect for everyday use.", productType, brand)),
			Category:        category,
			Brand:           brand,
			Price:           math.Round((10+rng.Float64()*990)*100) / 100,
			Rating:          math.Round((2.5+rng.Float64()*2.5)*10) / 10,
			NumReviews:      rng.Intn(5001),
			ViewCount:       100 + rng.Intn(49901),
			SalesLast30Days: rng.Intn(1001),
			ReleaseDate:     time.Now().AddDate(0, 0, -rng.Intn(1096)),
			DiscountPercent: []int{0, 5, 10, 15, 20, 25, 30}[rng.Intn(7)],
			InStock:         rng.Intn(4) != 0,
			Tags:            sampleTags(rng),
		}
		p.PopularityScore = popularityScore(p)
		products = append(products, p)
	}
	return products
}

// popularityScore blends rating, review volume, recent sales and views into
// one [0, 1] ranking signal. Each component is capped at its saturation
// point so a single outlier cannot dominate.
func popularityScore(p models.Product) float64 {
	score := 0.3*math.Min(p.Rating/5.0, 1.0) +
		0.2*math.Min(float64(p.NumReviews)/5000, 1.0) +
		0.3*math.Min(float64(p.SalesLast30Days)/1000, 1.0) +
		0.2*math.Min(float64(p.ViewCount)/50000, 1.0)
	return math.Round(score*10000) / 10000
}

func sampleTags(rng *rand.Rand) []string {
	k := rng.Intn(4)
	if k == 0 {
		return nil
	}
	perm := rng.Perm(len(tagPool))
	tags := make([]string, 0, k)
	for _, idx := range perm[:k] {
		tags = append(tags, tagPool[idx])
	}
	return tags
}

func generateInteractions(rng *rand.Rand, products []models.Product, numUsers, perUser int) []models.Interaction {
	byCategory := make(map[string][]string)
	allIDs := make([]string, 0, len(products))
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p.ID)
		allIDs = append(allIDs, p.ID)
	}

	interactions := make([]models.Interaction, 0, numUsers*perUser)
	for u := 1; u <= numUsers; u++ {
		userID := fmt.Sprintf("USER%05d", u)

		// Each user favors 1-3 categories; 80% of their events land there.
		perm := rng.Perm(len(categories))
		var preferred []string
		for _, idx := range perm[:1+rng.Intn(3)] {
			preferred = append(preferred, byCategory[categories[idx]]...)
		}

		sessionID := uuid.New().String()
		for i := 0; i < perUser; i++ {
			var productID string
			if rng.Float64() < 0.8 && len(preferred) > 0 {
				productID = preferred[rng.Intn(len(preferred))]
			} else {
				productID = allIDs[rng.Intn(len(allIDs))]
			}

			interactions = append(interactions, models.Interaction{
				UserID:          userID,
				ProductID:       productID,
				InteractionType: randomInteractionType(rng),
				Timestamp:       time.Now().AddDate(0, 0, -rng.Intn(91)),
				SessionID:       sessionID,
			})
		}
	}
	return interactions
}

// randomInteractionType draws from the funnel distribution: views dominate,
// purchases are rare.
func randomInteractionType(rng *rand.Rand) models.InteractionType {
	r := rng.Intn(100)
	switch {
	case r < 50:
		return models.InteractionView
	case r < 80:
		return models.InteractionClick
	case r < 95:
		return models.InteractionAddToCart
	default:
		return models.InteractionPurchase
	}
}

func postToSolr(ctx context.Context, baseURL string, products []models.Product) error {
	body, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	endpoint := fmt.Sprintf("%s/update?%s", baseURL, url.Values{"commit": {"true"}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build Solr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post products to Solr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("solr update returned status %d", resp.StatusCode)
	}
	return nil
}

func writeInteractions(ctx context.Context, cfg *config.Config, logger *logrus.Logger, output string, interactions []models.Interaction) error {
	if cfg.Interactions.Source == config.SourcePostgres {
		db, err := store.New(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		st := store.NewPostgresInteractionStore(db.PG, logger)
		for _, ev := range interactions {
			if err := st.AppendInteraction(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := json.MarshalIndent(interactions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal interactions: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write interaction file: %w", err)
	}
	return nil
}
