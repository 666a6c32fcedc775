// pkg/config/email.go
package config

type EmailConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string
}

func loadEmailConfig() EmailConfig {
	return EmailConfig{
		Provider:    getEnv("EMAIL_PROVIDER", "console"),
		FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@workforce.com"),
		FromName:    getEnv("EMAIL_FROM_NAME", "Workforce"),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
	}
}
