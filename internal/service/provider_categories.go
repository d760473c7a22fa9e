package service

// categoryProviderInfo is one provider entry in the static landing-page
// catalog.
type categoryProviderInfo struct {
	Name        string
	Description string
	IsPopular   bool
}

// providerCategoryInfo groups catalog providers by certification area.
type providerCategoryInfo struct {
	Name        string
	Description string
	Providers   []categoryProviderInfo
}

// providerCategories is the static landing-page catalog. Live exam and
// question counts are layered on top of it at request time.
var providerCategories = []providerCategoryInfo{
	{
		Name:        "Cloud Computing",
		Description: "Certifications for cloud platforms and infrastructure services",
		Providers: []categoryProviderInfo{
			{Name: "amazon", Description: "AWS certifications covering cloud architecture, operations and development", IsPopular: true},
			{Name: "microsoft", Description: "Microsoft Azure and 365 certification exams", IsPopular: true},
			{Name: "google", Description: "Google Cloud certification exams for engineers and architects", IsPopular: true},
		},
	},
	{
		Name:        "Networking",
		Description: "Certifications for network engineering and administration",
		Providers: []categoryProviderInfo{
			{Name: "cisco", Description: "Cisco networking certifications from CCNA to CCIE"},
			{Name: "juniper", Description: "Juniper Networks certification track"},
			{Name: "comptia", Description: "Vendor-neutral IT certifications including Network+ and Security+"},
		},
	},
	{
		Name:        "Security",
		Description: "Certifications for information security professionals",
		Providers: []categoryProviderInfo{
			{Name: "isc2", Description: "ISC2 security certifications including CISSP"},
			{Name: "eccouncil", Description: "EC-Council certifications including CEH"},
			{Name: "isaca", Description: "ISACA governance and audit certifications"},
		},
	},
	{
		Name:        "Virtualization & Infrastructure",
		Description: "Certifications for virtualization and data-center platforms",
		Providers: []categoryProviderInfo{
			{Name: "vmware", Description: "VMware data-center and cloud virtualization certifications"},
			{Name: "redhat", Description: "Red Hat Linux and OpenShift certification exams"},
			{Name: "oracle", Description: "Oracle database and Java certification exams"},
		},
	},
}

// providerDescription returns the catalog description for a provider, with a
// generic fallback for providers outside the catalog.
func providerDescription(providerName string) string {
	for _, category := range providerCategories {
		for _, provider := range category.Providers {
			if provider.Name == providerName {
				return provider.Description
			}
		}
	}
	return "Official certification exams from " + providerName
}

func totalCatalogProviders() int {
	total := 0
	for _, category := range providerCategories {
		total += len(category.Providers)
	}
	return total
}
