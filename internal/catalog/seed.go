package catalog

// Module IDs of the built-in curriculum.
const (
	DigitalArrest   = "digital_arrest"
	CyberAttacks    = "cyber_attacks"
	SocialMedia     = "social_media"
	AccountSecurity = "account_security"
	CloudSecurity   = "cloud_security"
	DeviceSecurity  = "device_security"
)

// SeedModules returns the built-in curriculum.
func SeedModules() []Module {
	return []Module{
		{
			ID:            DigitalArrest,
			Name:          "Digital Arrest",
			Description:   "Virtual kidnapping and online extortion tactics",
			Icon:          "🔒",
			PassThreshold: 60,
		},
		{
			ID:            CyberAttacks,
			Name:          "Cyber Attacks",
			Description:   "Malware, ransomware, DDoS, and attack vectors",
			Icon:          "⚡",
			PassThreshold: 65,
		},
		{
			ID:            SocialMedia,
			Name:          "Social Media",
			Description:   "Platform security and impersonation threats",
			Icon:          "📱",
			Dependencies:  []string{DigitalArrest},
			PassThreshold: 70,
		},
		{
			ID:            AccountSecurity,
			Name:          "Account Security",
			Description:   "Passwords, MFA, and credential management",
			Icon:          "👤",
			Dependencies:  []string{CyberAttacks},
			PassThreshold: 75,
		},
		{
			ID:            CloudSecurity,
			Name:          "Cloud Security",
			Description:   "Cloud infrastructure and data protection",
			Icon:          "☁️",
			Dependencies:  []string{AccountSecurity},
			PassThreshold: 80,
		},
		{
			ID:            DeviceSecurity,
			Name:          "Device Security",
			Description:   "Mobile and endpoint protection",
			Icon:          "💻",
			Dependencies:  []string{SocialMedia, AccountSecurity},
			PassThreshold: 85,
		},
	}
}

// Default builds the built-in curriculum catalog.
func Default() *Catalog {
	return MustNew(SeedModules())
}
