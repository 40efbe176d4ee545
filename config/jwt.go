package config

type Jwt struct {
	Secret string `json:"secret" yaml:"secret"`
	// 过期时间（秒）
	ExpiresTime int64 `json:"expires_time" yaml:"expires_time"`
}
