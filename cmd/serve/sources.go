package serve

import (
	"github.com/casafx/madrates/aggregate"
	"github.com/casafx/madrates/extract"
	"github.com/casafx/madrates/storage/types"
)

// defaultSources returns the default scrape sources
func defaultSources() []aggregate.Source {
	majors := []types.Currency{
		types.CurrencyUSD,
		types.CurrencyEUR,
	}

	return []aggregate.Source{
		{
			Name:       "Banque Populaire",
			URL:        "https://bpnet.gbp.ma/Public/FinaServices/ExchangeRate",
			Currencies: majors,
			Extractor:  extract.NewBPNet(),
		},
		{
			Name:       "Attijariwafa Bank",
			URL:        "https://attijarinet.attijariwafa.com/particulier/public/coursdevise",
			Currencies: majors,
			Extractor:  extract.NewAttijari(),
		},
		{
			Name:       "Bank Al-Maghrib",
			URL:        "https://www.bkam.ma/Marches/Principaux-indicateurs/Marche-des-changes/Cours-de-change/Cours-de-reference",
			Currencies: majors,
			Extractor:  extract.NewReference(),
		},
	}
}
