package config

// Wallet 钱包配置。Types 是积分类型的封闭枚举，
// 余额操作只接受这里声明过的类型。
type Wallet struct {
	Types       []string `json:"types" yaml:"types"`
	DefaultType string   `json:"default_type" yaml:"default_type"`
}

func DefaultWallet() *Wallet {
	return &Wallet{
		Types:       []string{"regular_point", "bonus_point"},
		DefaultType: "regular_point",
	}
}

// Has 判断积分类型是否在枚举内
func (w *Wallet) Has(walletType string) bool {
	for _, t := range w.Types {
		if t == walletType {
			return true
		}
	}
	return false
}
