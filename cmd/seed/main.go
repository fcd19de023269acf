package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"github.com/joho/godotenv"
	"github.com/partspoint/backend/internal/config"
	"github.com/partspoint/backend/internal/database"
	"github.com/partspoint/backend/internal/models"
	"github.com/partspoint/backend/internal/repository"
	"github.com/partspoint/backend/internal/seeder"
	"github.com/partspoint/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// HelpPageConfig represents one help-center page to import
type HelpPageConfig struct {
	Title    string
	URL      string
	Category string
	Priority int // Higher priority pages are processed first
	Approved bool
}

// ContentSeeder crawls the help center and writes knowledge entries
type ContentSeeder struct {
	processor   *seeder.ContentProcessor
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
	processed   map[string]bool
	errors      []error
}

var (
	// Help-center pages covering the topics customers ask about most
	HelpCenterPages = []HelpPageConfig{
		{Title: "Return Policy", Category: "Returns", Priority: 10, Approved: true, URL: "https://help.partspoint.com/returns/policy"},
		{Title: "How to Start a Return", Category: "Returns", Priority: 9, Approved: true, URL: "https://help.partspoint.com/returns/start"},
		{Title: "Refund Timelines", Category: "Returns", Priority: 9, Approved: true, URL: "https://help.partspoint.com/returns/refunds"},
		{Title: "Shipping Options and Costs", Category: "Shipping", Priority: 10, Approved: true, URL: "https://help.partspoint.com/shipping/options"},
		{Title: "Order Tracking", Category: "Shipping", Priority: 9, Approved: true, URL: "https://help.partspoint.com/shipping/tracking"},
		{Title: "International Shipping", Category: "Shipping", Priority: 7, Approved: true, URL: "https://help.partspoint.com/shipping/international"},
		{Title: "Warranty Coverage", Category: "Warranty", Priority: 8, Approved: true, URL: "https://help.partspoint.com/warranty/coverage"},
		{Title: "Warranty Claims", Category: "Warranty", Priority: 8, Approved: true, URL: "https://help.partspoint.com/warranty/claims"},
		{Title: "Part Fitment Guide", Category: "Fitment", Priority: 8, Approved: true, URL: "https://help.partspoint.com/fitment/guide"},
		{Title: "Payment Methods", Category: "Payments", Priority: 7, Approved: true, URL: "https://help.partspoint.com/payments/methods"},
		{Title: "Loyalty Points Program", Category: "Loyalty", Priority: 6, Approved: true, URL: "https://help.partspoint.com/loyalty/points"},
		{Title: "Merchant Partnership Program", Category: "Merchants", Priority: 5, Approved: true, URL: "https://help.partspoint.com/merchants/program"},
		{Title: "Account and Address Management", Category: "Account", Priority: 6, Approved: true, URL: "https://help.partspoint.com/account/addresses"},
		{Title: "Order Cancellation", Category: "Orders", Priority: 7, Approved: true, URL: "https://help.partspoint.com/orders/cancellation"},
		{Title: "Bulk Orders", Category: "Orders", Priority: 4, Approved: false, URL: "https://help.partspoint.com/orders/bulk"},
	}

	// Command line flags
	dryRun    = flag.Bool("dry-run", false, "Don't write to the database, just print what would be imported")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit = flag.Int("limit", 0, "Limit number of pages to process (0 = all)")
	delay     = flag.Duration("delay", 2*time.Second, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting help-center content seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var repoManager *repository.RepositoryManager

	if !*dryRun {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Database migration failed")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)
	}

	cs := NewContentSeeder(repoManager, logger)

	if err := cs.SeedContent(); err != nil {
		logger.WithError(err).Fatal("Content seeding failed")
	}

	logger.Info("Content seeding completed successfully!")
}

func NewContentSeeder(repoManager *repository.RepositoryManager, logger *logrus.Logger) *ContentSeeder {
	return &ContentSeeder{
		processor:   seeder.NewContentProcessor(),
		repoManager: repoManager,
		logger:      logger,
		processed:   make(map[string]bool),
		errors:      make([]error, 0),
	}
}

// newPageCollector builds a fresh collector. One per page, so a page's OnHTML
// and OnError closures never outlive its visit.
func newPageCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent("PartsPoint-Seeder/1.0 (+https://help.partspoint.com)"),
	)

	if *verbose {
		c.SetDebugger(&debug.LogDebugger{})
	}

	c.Limit(&colly.LimitRule{
		DomainGlob:  "help.partspoint.com",
		Parallelism: 1,
		Delay:       *delay,
	})

	c.SetRequestTimeout(30 * time.Second)

	return c
}

func (cs *ContentSeeder) SeedContent() error {
	cs.logger.Info("Starting content seeding process...")

	pages := make([]HelpPageConfig, len(HelpCenterPages))
	copy(pages, HelpCenterPages)

	// Sort by priority (descending)
	for i := 0; i < len(pages)-1; i++ {
		for j := i + 1; j < len(pages); j++ {
			if pages[i].Priority < pages[j].Priority {
				pages[i], pages[j] = pages[j], pages[i]
			}
		}
	}

	if *pageLimit > 0 && *pageLimit < len(pages) {
		pages = pages[:*pageLimit]
		cs.logger.WithField("limit", *pageLimit).Info("Limited pages to process")
	}

	cs.logger.WithField("total_pages", len(pages)).Info("Processing help-center pages")

	for i, page := range pages {
		cs.logger.WithFields(logrus.Fields{
			"page":     page.Title,
			"priority": page.Priority,
			"progress": fmt.Sprintf("%d/%d", i+1, len(pages)),
		}).Info("Processing page")

		if err := cs.processPage(page); err != nil {
			cs.logger.WithError(err).WithField("page", page.Title).Error("Failed to process page")
			cs.errors = append(cs.errors, fmt.Errorf("failed to process %s: %w", page.Title, err))
			continue
		}

		cs.processed[page.Title] = true
		cs.logger.WithField("page", page.Title).Info("Page processed successfully")

		time.Sleep(500 * time.Millisecond)
	}

	cs.logger.WithFields(logrus.Fields{
		"processed": len(cs.processed),
		"errors":    len(cs.errors),
	}).Info("Content seeding completed")

	if len(cs.errors) > 0 {
		cs.logger.Warn("Some pages failed to process:")
		for _, err := range cs.errors {
			cs.logger.WithError(err).Warn("Processing error")
		}
	}

	return nil
}

func (cs *ContentSeeder) processPage(page HelpPageConfig) error {
	content, err := cs.fetchContent(page)
	if err != nil {
		return err
	}

	tags := cs.processor.ExtractTags(page.Title + " " + page.Category)
	confidence := cs.processor.SuggestConfidence(content)

	if *dryRun {
		cs.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"category":       page.Category,
			"content_length": len(content),
			"tags":           strings.Join(tags, ","),
			"confidence":     confidence,
		}).Info("DRY RUN: Would import entry")
		return nil
	}

	return cs.upsertEntry(page, content, tags, confidence)
}

// fetchContent visits one help-center page and returns its cleaned text.
func (cs *ContentSeeder) fetchContent(page HelpPageConfig) (string, error) {
	var content string
	var processingError error

	c := newPageCollector()

	c.OnHTML("main, article, #content", func(e *colly.HTMLElement) {
		e.DOM.Find("nav, footer, .breadcrumbs, .related-articles, .feedback-widget").Remove()

		content = cs.processor.CleanContent(e.DOM.Text())

		cs.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"content_length": len(content),
		}).Debug("Content extracted")
	})

	c.OnError(func(r *colly.Response, err error) {
		processingError = err
	})

	if err := c.Visit(page.URL); err != nil {
		return "", fmt.Errorf("failed to visit page: %w", err)
	}

	if processingError != nil {
		return "", fmt.Errorf("processing error: %w", processingError)
	}

	if content == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	return content, nil
}

func (cs *ContentSeeder) upsertEntry(page HelpPageConfig, content string, tags []string, confidence float64) error {
	existing, err := cs.repoManager.Knowledge.GetByTitle(page.Title)
	if err == nil {
		existing.Content = content
		existing.Category = page.Category
		existing.Tags = models.StringArray(tags)
		existing.SourceURL = page.URL
		return cs.repoManager.Knowledge.Update(existing)
	}

	entry := &models.KnowledgeEntry{
		Title:           page.Title,
		Content:         content,
		Category:        page.Category,
		ConfidenceScore: confidence,
		Tags:            models.StringArray(tags),
		IsApproved:      page.Approved,
		SourceURL:       page.URL,
	}

	return cs.repoManager.Knowledge.Create(entry)
}
