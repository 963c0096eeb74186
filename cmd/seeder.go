package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	authPostgres "github.com/Ilan9903/Juris-IA/internal/auth/postgres"
	articleDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/article"
	promptDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/prompttemplate"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
)

const assistantPrompt = `Tu es Juris-IA, un assistant juridique spécialisé en droit français.
Réponds de manière claire et structurée, cite les textes applicables lorsque c'est possible
et rappelle que tes réponses ne remplacent pas l'avis d'un avocat.`

type seedArticle struct {
	Title      string
	Content    string
	Categories []string
	Universal  bool
}

var sampleArticles = []seedArticle{
	{
		Title:      "Le consentement au sens du RGPD",
		Content:    "Le consentement doit être libre, spécifique, éclairé et univoque (article 4 du RGPD).",
		Categories: []string{"RGPD"},
		Universal:  true,
	},
	{
		Title:      "Durée légale du préavis de démission",
		Content:    "La durée du préavis est fixée par la loi, la convention collective ou les usages (article L1237-1 du Code du travail).",
		Categories: []string{"Travail"},
	},
	{
		Title:      "Formation du contrat",
		Content:    "Le contrat est un accord de volontés entre deux ou plusieurs personnes destiné à créer des obligations (article 1101 du Code civil).",
		Categories: []string{"Contrats", "Droit civil"},
		Universal:  true,
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed permissions, an administrator, the published assistant prompt and sample legal articles.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := initGorm(sqlxDB, cfg)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if clearData {
				if err := clearTables(tx); err != nil {
					return err
				}
				fmt.Println("Cleared existing data")
			}

			adminID, err := seedAdmin(tx, cfg.Security.BCryptCost)
			if err != nil {
				return err
			}
			if err := seedPrompt(tx, adminID); err != nil {
				return err
			}
			return seedArticles(tx)
		})
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}

		fmt.Println("Seed completed successfully")
	},
}

func clearTables(tx *gorm.DB) error {
	for _, table := range []string{
		"messages",
		"conversations",
		"article_categories",
		"legal_articles",
		"prompt_templates",
		"user_permissions",
		"permissions",
		"users",
	} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seedAdmin(tx *gorm.DB, cost int) (int64, error) {
	email := envOr("SEED_ADMIN_EMAIL", "admin@juris-ia.fr")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")

	var admin userDatamodel.User
	err := tx.Where("email = ?", email).First(&admin).Error
	switch {
	case err == nil:
		fmt.Println("admin user already exists; will ensure permissions")
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return 0, fmt.Errorf("hash admin password: %w", err)
		}
		admin = userDatamodel.User{
			Name:         "Administrateur",
			Email:        email,
			PasswordHash: string(hash),
			Role:         string(auth.RoleAdmin),
			Status:       string(auth.StatusOffline),
			ProfileImage: auth.DefaultProfileImage,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return 0, fmt.Errorf("insert admin user: %w", err)
		}
		fmt.Println("Seeded admin user:", email)
	default:
		return 0, fmt.Errorf("lookup admin user: %w", err)
	}

	names := make([]string, 0, len(auth.AllPermissions))
	for _, p := range auth.AllPermissions {
		names = append(names, string(p))
	}
	if err := authPostgres.GrantPermissions(tx, admin.ID, names, nil); err != nil {
		return 0, err
	}
	fmt.Println("Granted all permissions to admin user:", email)
	return admin.ID, nil
}

func seedPrompt(tx *gorm.DB, adminID int64) error {
	prompt := promptDatamodel.PromptTemplate{
		Name:            prompttemplate.AssistantPromptName,
		Content:         assistantPrompt,
		Description:     "Prompt système de l'assistant juridique",
		Category:        "chat",
		Status:          string(prompttemplate.StatusPublished),
		CreatedByID:     &adminID,
		LastUpdatedByID: &adminID,
	}
	result := tx.Where(promptDatamodel.PromptTemplate{Name: prompt.Name}).FirstOrCreate(&prompt)
	if result.Error != nil {
		return fmt.Errorf("seed prompt: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		fmt.Println("Seeded prompt template:", prompt.Name)
	}
	return nil
}

func seedArticles(tx *gorm.DB) error {
	for _, a := range sampleArticles {
		var count int64
		if err := tx.Model(&articleDatamodel.LegalArticle{}).Where("title = ?", a.Title).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup article %q: %w", a.Title, err)
		}
		if count > 0 {
			continue
		}

		row := articleDatamodel.LegalArticle{Title: a.Title, Content: a.Content, IsUniversal: a.Universal}
		for i, name := range a.Categories {
			row.Categories = append(row.Categories, articleDatamodel.ArticleCategory{Name: name, Position: i})
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert article %q: %w", a.Title, err)
		}
		fmt.Printf("Seeded article: %s\n", a.Title)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
