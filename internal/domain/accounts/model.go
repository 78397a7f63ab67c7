package accounts

import "time"

type Region string

const (
	RegionCIS   Region = "CIS"
	RegionEU    Region = "EU"
	RegionNA    Region = "NA"
	RegionAPAC  Region = "APAC"
	RegionBR    Region = "BR"
	RegionLATAM Region = "LATAM"
)

var allRegions = []Region{RegionCIS, RegionEU, RegionNA, RegionAPAC, RegionBR, RegionLATAM}

// ParseRegion проверяет введённый админом регион по списку допустимых.
func ParseRegion(s string) (Region, bool) {
	for _, r := range allRegions {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func Regions() []Region { return allRegions }

type Account struct {
	ID          int64
	Title       string
	Rank        string
	Description string
	PriceRUB    int64
	Region      Region
	ImageURL    string

	// Чувствительные поля: наружу (API, каталог) не отдаются,
	// покупатель получает их только после подтверждения оплаты.
	Login          string
	Password       string
	Email          string
	EmailPassword  string
	AdditionalInfo string

	IsSold    bool
	AddedBy   int64
	CreatedAt time.Time
}

// Draft — данные нового аккаунта, собранные мастером добавления.
type Draft struct {
	Title          string
	Rank           string
	Description    string
	PriceRUB       int64
	Region         Region
	ImageURL       string
	Login          string
	Password       string
	Email          string
	EmailPassword  string
	AdditionalInfo string
	AddedBy        int64
}
