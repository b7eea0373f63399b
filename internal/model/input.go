package model

import "github.com/shopspring/decimal"

// SubjectType selects the PPh 21/26 branch.
type SubjectType string

const (
	SubjectPermanentEmployee    SubjectType = "pegawai_tetap"
	SubjectPensioner            SubjectType = "pensiunan"
	SubjectNonPermanentEmployee SubjectType = "pegawai_tidak_tetap"
	SubjectNonEmployee          SubjectType = "bukan_pegawai"
	SubjectActivityParticipant  SubjectType = "peserta_kegiatan"
	SubjectPensionWithdrawal    SubjectType = "program_pensiun"
	SubjectFormerEmployee       SubjectType = "mantan_pegawai"
	SubjectForeignTaxpayer      SubjectType = "wpln"
	SubjectUnknown              SubjectType = "unknown"
)

var subjectTypes = []SubjectType{
	SubjectPermanentEmployee,
	SubjectPensioner,
	SubjectNonPermanentEmployee,
	SubjectNonEmployee,
	SubjectActivityParticipant,
	SubjectPensionWithdrawal,
	SubjectFormerEmployee,
	SubjectForeignTaxpayer,
}

func (s *SubjectType) UnmarshalText(b []byte) error {
	*s = SubjectUnknown
	for _, known := range subjectTypes {
		if string(b) == string(known) {
			*s = known
		}
	}
	return nil
}

// Scheme is the PPh 21 permanent-employee withholding scheme.
type Scheme string

const (
	SchemeOld Scheme = "lama"
	SchemeTER Scheme = "ter"
)

// TERCategory picks a TER table. Unknown categories read table A.
type TERCategory string

const (
	TERCategoryA TERCategory = "A"
	TERCategoryB TERCategory = "B"
	TERCategoryC TERCategory = "C"
)

type PPh21Input struct {
	SubjectType         SubjectType         `json:"subject_type"`
	BrutoMonthly        Amount              `json:"bruto_monthly"`
	MonthsPaid          int                 `json:"months_paid"`
	PensionContribution Amount              `json:"pension_contribution"`
	ZakatOrDonation     Amount              `json:"zakat_or_donation"`
	PTKPStatus          string              `json:"ptkp_status"`
	Scheme              Scheme              `json:"scheme"`
	TERCategory         TERCategory         `json:"ter_category"`
	BonusAnnual         Amount              `json:"bonus_annual"`
	ForeignTaxRate      decimal.NullDecimal `json:"foreign_tax_rate"`
	TreatyCountry       string              `json:"treaty_country,omitempty"`
	IsDailyWorker       bool                `json:"is_daily_worker"`
}

// PPh22TransactionType classifies a PPh 22 collection.
type PPh22TransactionType string

const (
	PPh22Import          PPh22TransactionType = "impor"
	PPh22OilAndGas       PPh22TransactionType = "migas"
	PPh22StateEnterprise PPh22TransactionType = "bumn"
	PPh22Other           PPh22TransactionType = "lainnya"
)

type PPh22Input struct {
	TransactionType  PPh22TransactionType `json:"transaction_type"`
	TransactionValue Amount               `json:"transaction_value"`
	OtherCosts       Amount               `json:"other_costs"`
	Deduction        Amount               `json:"deduction"`
}

type PPh23ServiceType string

const (
	PPh23TechnicalService PPh23ServiceType = "jasaTeknik"
	PPh23Consulting       PPh23ServiceType = "jasaKonsultan"
	PPh23EquipmentRental  PPh23ServiceType = "sewaAlat"
	PPh23Dividend         PPh23ServiceType = "dividen"
	PPh23Interest         PPh23ServiceType = "bunga"
)

type PPh23Input struct {
	ServiceType PPh23ServiceType `json:"service_type"`
	GrossAmount Amount           `json:"gross_amount"`
	IsFinal     bool             `json:"is_final"`
}

type PPh42ObjectType string

const (
	PPh42LandBuildingRental PPh42ObjectType = "sewaTanah"
	PPh42Construction       PPh42ObjectType = "konstruksi"
	PPh42Restaurant         PPh42ObjectType = "restoran"
	PPh42SmallBusinessFinal PPh42ObjectType = "umkmFinal"
)

type PPh42Input struct {
	ObjectType  PPh42ObjectType `json:"object_type"`
	GrossAmount Amount          `json:"gross_amount"`
}

type PPNInput struct {
	TaxYear    string              `json:"tax_year"`
	BasePrice  Amount              `json:"base_price"`
	Discount   Amount              `json:"discount"`
	OtherCosts Amount              `json:"other_costs"`
	CustomRate decimal.NullDecimal `json:"custom_rate"`
	IncludePPN bool                `json:"include_ppn"`
}

type PPNBMGoodsType string

const (
	PPNBMLuxuryVehicle      PPNBMGoodsType = "kendaraanMewah"
	PPNBMJewelry            PPNBMGoodsType = "perhiasan"
	PPNBMPleasureCraft      PPNBMGoodsType = "kapalPesiar"
	PPNBMPremiumElectronics PPNBMGoodsType = "elektronikPremium"
)

type PPNBMInput struct {
	GoodsType  PPNBMGoodsType      `json:"goods_type"`
	DPPPPN     Amount              `json:"dpp_ppn"`
	CustomRate decimal.NullDecimal `json:"custom_rate"`
}
