package config

import "github.com/raushankrgupta/flyer-price-scraper/models"

// DefaultStores is used when config.yaml does not list any stores
func DefaultStores() []models.StoreTarget {
	return []models.StoreTarget{
		{Name: "スーパーみらべる東十条店", URL: "https://chirashi.kurashiru.com/stores/3836e998-39a3-462d-a0d0-40eba62a0046", Family: models.FlyerHosting},
		{Name: "コモディイイダ東十条店", URL: "https://tokubai.co.jp/%E3%82%B3%E3%83%A2%E3%83%87%E3%82%A3%E3%82%A4%E3%82%A4%E3%83%80/7547", Family: models.ListingAggregator},
		{Name: "サミット王子桜田通り店", URL: "https://tokubai.co.jp/%E3%82%B5%E3%83%9F%E3%83%83%E3%83%88/81738", Family: models.ListingAggregator},
		{Name: "スーパーみらべる十条店", URL: "https://chirashi.kurashiru.com/stores/145cc4cb-df2f-40eb-af71-d781622c0f4a", Family: models.FlyerHosting},
		{Name: "オーケー十条店", URL: "https://chirashi.kurashiru.com/stores/43344c79-4ca2-41cb-8d77-c217156d60ef", Family: models.FlyerHosting},
		{Name: "業務スーパー王子店", URL: "https://chirashi.kurashiru.com/stores/f851643f-efe0-45de-a7b8-98263d6130b8", Family: models.FlyerHosting},
		{Name: "イオンスタイル赤羽店", URL: "https://chirashi.kurashiru.com/stores/92d7d7a8-f768-404a-bb91-b5dba21e7b34", Family: models.FlyerHosting},
		{Name: "DCM東十条店", URL: "https://chirashi.kurashiru.com/stores/596f33b5-8461-4f14-941d-af83a271ea1b", Family: models.FlyerHosting},
	}
}
