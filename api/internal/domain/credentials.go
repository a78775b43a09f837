package domain

type Environment uint8

const (
	ENV_SANDBOX Environment = iota
	ENV_LIVE
)

var Environments = [...]string{"sandbox", "live"}

func StrToEnvironment(s string) Environment {
	for i, envName := range Environments {
		if s == envName {
			return Environment(i)
		}
	}
	return ENV_SANDBOX
}

func IsValidEnvironment(s string) bool {
	for _, envName := range Environments {
		if s == envName {
			return true
		}
	}
	return false
}

func (e Environment) ToString() string {
	return Environments[e]
}

// provider api hosts
const (
	SANDBOX_BASE_URL = "https://sandbox.safaricom.co.ke"
	LIVE_BASE_URL    = "https://api.safaricom.co.ke"
)

func (e Environment) BaseURL() string {
	if e == ENV_LIVE {
		return LIVE_BASE_URL
	}
	return SANDBOX_BASE_URL
}

type Credentials struct {
	Model
	ID          uint        `gorm:"primaryKey"`
	BranchID    uint        `gorm:"not null;uniqueIndex:idx_credentials_branch_env"`
	Environment Environment `gorm:"type:int8;uniqueIndex:idx_credentials_branch_env"`
	IsActive    bool        `gorm:"default:true"`
	IsTesting   bool
	// opaque provider secrets, never shared across branches
	ConsumerKey    string `gorm:"type:text;not null"`
	ConsumerSecret string `gorm:"type:text;not null"`
	Shortcode      string `gorm:"size:16;not null"`
	Passkey        string `gorm:"type:text;not null"`
}

func (c *Credentials) Scope() Scope {
	return BranchScope(c.BranchID)
}
