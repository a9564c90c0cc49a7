package config

import "time"

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: "8000"},
		Workers: 12,
		Fetch: FetchConfig{
			Timeout:           5 * time.Second,
			MaxRetries:        2,
			MaxRedirects:      5,
			BaseDelay:         50 * time.Millisecond,
			JitterMin:         10 * time.Millisecond,
			JitterMax:         100 * time.Millisecond,
			RequestsPerSecond: 0,
			MaxBodyBytes:      5 << 20,
			UserAgents:        append([]string(nil), defaultUserAgents...),
		},
		Browser: BrowserConfig{
			Headless:        true,
			PageLoadTimeout: 15 * time.Second,
			WaitTimeout:     10 * time.Second,
			WindowWidth:     1920,
			WindowHeight:    1080,
		},
		Search: SearchConfig{
			Engines: []SearchEngine{
				{Name: "google", URLTemplate: "https://www.google.com/search?q=%s", ResultSelector: "div.g"},
				{Name: "bing", URLTemplate: "https://www.bing.com/search?q=%s", ResultSelector: "li.b_algo"},
			},
			Region:         "us",
			MaxResults:     5,
			FallbackSuffix: "official website contact",
			Directories: []string{
				"linkedin.com/company",
				"facebook.com/pages",
				"yellowpages.com",
				"yelp.com/biz",
			},
			DirectorySearchURL: "https://www.google.com/search?q=%s",
			ExcludedDomains: []string{
				"facebook", "linkedin", "twitter", "x", "instagram", "youtube",
				"amazon", "wikipedia", "bloomberg", "crunchbase", "yelp",
				"yellowpages", "glassdoor", "indeed", "pinterest", "tiktok",
			},
			SimilarityThreshold: 0.8,
		},
		Discover: DiscoverConfig{
			Vocabulary: defaultVocabulary(),
			CommonPaths: []string{
				"/contact", "/contact-us", "/contactus", "/connect", "/reach-us",
				"/reach", "/get-in-touch", "/about/contact", "/support/contact",
				"/help/contact", "/locations",
			},
			TopN:              3,
			HomepageThreshold: 0.6,
			ProbeThreshold:    0.4,
			MaxSitemaps:       2,
		},
		Cache: CacheConfig{
			Type:            "memory",
			TTL:             7 * 24 * time.Hour,
			NegativeTTL:     24 * time.Hour,
			PageTTL:         time.Hour,
			CleanupInterval: 10 * time.Minute,
			Redis:           RedisConfig{Address: "localhost:6379"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:134.0) Gecko/20100101 Firefox/134.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36 Edg/134.0.0.0",
}

func defaultVocabulary() Vocabulary {
	return Vocabulary{
		"english": {
			"contact", "contact-us", "about/contact", "about-us/contact",
			"reach-us", "get-in-touch", "support", "help", "customer-service",
			"customer-support", "contact-support", "contact-form", "feedback",
			"enquiry", "inquiry", "reach-out", "connect", "talk-to-us",
			"contact/sales", "contact/support", "helpdesk", "help-center",
		},
		"german": {
			"kontakt", "uber-uns/kontakt", "impressum", "kontaktformular",
			"kundendienst", "kundenservice", "hilfe", "uber-uns", "support-de",
			"kontaktieren-sie-uns", "schreiben-sie-uns",
		},
		"spanish": {
			"contacto", "contactenos", "sobre-nosotros", "contactar",
			"atencion-al-cliente", "ayuda", "soporte", "servicio-al-cliente",
			"contactanos", "escribenos", "donde-estamos",
		},
		"french": {
			"nous-contacter", "contact-france", "contactez-nous", "aide",
			"service-client", "support-fr", "assistance", "nous-ecrire",
			"coordonnees", "service-clientele",
		},
		"italian": {
			"contatti", "contattaci", "chi-siamo", "assistenza",
			"servizio-clienti", "supporto", "dove-siamo", "scrivici",
		},
		"portuguese": {
			"contato", "contacte-nos", "fale-conosco", "atendimento",
			"suporte", "ajuda", "onde-estamos", "assistencia",
		},
		"dutch": {
			"neem-contact-op", "klantenservice", "over-ons",
			"hulp", "ondersteuning", "contact-opnemen",
		},
		"turkish": {
			"iletisim", "bize-ulasin", "bizimle-iletisime-gecin", "destek",
			"musteri-hizmetleri", "iletisim-formu", "bize-yazin", "kunye",
			"firma-iletisim", "kurumsal-iletisim", "hakkimizda/iletisim",
			"bayi-iletisim", "merkez-iletisim", "genel-merkez",
		},
		"russian": {
			"kontakty", "svyaz", "o-nas/kontakty", "podderzhka",
			"obratnaya-svyaz", "napisat-nam", "sluzhba-podderzhki",
			"pomoshch", "kontaktnaya-informatsiya", "svyazatsya-s-nami",
		},
		"chinese": {
			"lian-xi-wo-men", "guan-yu-wo-men", "ke-fu-zhong-xin",
			"bang-zhu-zhong-xin", "lian-xi-fang-shi", "jiu-zhu",
		},
		"japanese": {
			"otoiawase", "contact-jp", "support-jp", "help-jp",
			"o-toiawase", "contact-japan", "support-japan",
		},
		"korean": {
			"munui", "munuihagi", "contact-kr", "support-kr",
			"gokaek-sente", "contact-korea", "support-korea",
		},
		"arabic": {
			"ittisal", "tawasol-maana", "contact-ar", "support-ar",
			"musaeada", "aldaem", "contact-arabic",
		},
		"common_variations": {
			"contact-info", "contact-information", "business-contact",
			"corporate-contact", "global-contact", "sales-contact",
			"office-contact", "headquarters-contact", "branch-contact",
			"regional-contact", "international-contact", "local-contact",
			"contact-details", "contact-directory", "contact-locations",
			"contact-addresses", "general-contact", "main-contact",
		},
		"industry_specific": {
			"dealer-contact", "supplier-contact", "vendor-contact",
			"distributor-contact", "partner-contact", "reseller-contact",
			"wholesaler-contact", "manufacturer-contact", "factory-contact",
			"industrial-contact", "commercial-contact", "retail-contact",
		},
		"url_patterns": {
			`contact.*/.*html?`, `about.*/.*contact.*`, `.*/contact$`,
			`.*/contact-.*`, `.*/.*-contact`, `.*/reach-.*`, `.*/connect.*`,
			`help.*/contact.*`, `support.*/contact.*`, `.*/enquiry.*`,
			`.*/inquiry.*`, `.*/feedback.*`, `.*/support.*`,
		},
		"subdomain_patterns": {
			"contact.", "support.", "help.", "info.",
			"customerservice.", "cs.", "enquiry.", "feedback.",
		},
		"dynamic_paths": {
			`contact/[0-9]+`, `contact/[a-z]{2}`, `contact/[a-z]{2}-[a-z]{2}`,
			`contact/region/[a-z]+`, `contact/office/[a-z]+`,
			`contact/department/[a-z]+`, `support/[a-z]+/contact`,
		},
		"special_cases": {
			`^/.*#contact`, `^/.*#reach-us`, `^/.*#get-in-touch`,
			`^/.*#connect`, `^/.*#support`,
			`contact\?.*`, `support\?.*`, `help\?.*`,
		},
		"file_extensions": {
			"contact.html", "contact.php", "contact.asp", "contact.jsp",
			"contact.aspx", "contact.shtml", "contact.cfm", "contact/",
			"contact/index.html",
		},
		"api_endpoints": {
			"/api/contact", "/api/v1/contact", "/api/support",
			"/api/feedback", "/contact/api", "/v1/contact",
		},
	}
}
