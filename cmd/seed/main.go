package main

import (
	"encoding/csv"
	"flag"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/config"
	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/logger"
	"github.com/pageza/foodgram-v2/backend/internal/models"
)

var seedTags = []models.Tag{
	{Name: "soups", Color: "#CD5C5C", Slug: "soup"},
	{Name: "side dishes", Color: "#228B22", Slug: "garnish"},
	{Name: "salads", Color: "#87CEFA", Slug: "salad"},
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	log, err := logger.New(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	for _, tag := range seedTags {
		if err := db.Where(models.Tag{Slug: tag.Slug}).FirstOrCreate(&models.Tag{
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		}).Error; err != nil {
			log.Fatal("failed to seed tag", "slug", tag.Slug, "error", err)
		}
	}
	log.Info("tags seeded", "count", len(seedTags))

	count, err := loadIngredients(db, *ingredientsPath)
	if err != nil {
		log.Fatal("failed to load ingredients", "error", err)
	}
	log.Info("ingredients seeded", "count", count)
}

// loadIngredients imports a two-column CSV (name, measurement unit),
// skipping the header row and rows already present.
func loadIngredients(db *gorm.DB, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return 0, err
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) < 2 {
			continue
		}

		ingredient := models.Ingredient{Name: row[0], MeasurementUnit: row[1]}
		if err := db.Where(models.Ingredient{
			Name:            row[0],
			MeasurementUnit: row[1],
		}).FirstOrCreate(&ingredient).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
