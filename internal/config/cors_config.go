package config

type Cors struct{}

var _ CorsConfig = Cors{}

// The exchange proxy mirrors the headers the original serverless function
// sent: any origin may POST a code for exchange.
func (Cors) GetAllowedOrigin() string {
	return "*"
}

func (Cors) GetAllowedMethods() string {
	return "POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type"
}
