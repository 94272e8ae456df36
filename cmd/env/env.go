package env

const (
	// Prefix is the common prefix for all madrates ENV variables
	Prefix = "MADRATES_"

	// DBURLSuffix is the ENV suffix for the Postgres connection string
	DBURLSuffix = "DB_URL"

	// ScrapeEndpointSuffix is the ENV suffix for the scraping backend URL
	ScrapeEndpointSuffix = "SCRAPE_ENDPOINT"

	// ScrapeAPIKeySuffix is the ENV suffix for the scraping backend API key
	ScrapeAPIKeySuffix = "SCRAPE_API_KEY"
)
