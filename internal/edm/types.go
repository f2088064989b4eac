package edm

// FuelFlowUnit identifies the flow rate unit configured on the instrument.
type FuelFlowUnit int

const (
	FlowUnitUnknown FuelFlowUnit = iota
	FlowUnitGPH
	FlowUnitPPH
	FlowUnitLPH
	FlowUnitKPH
)

func (u FuelFlowUnit) String() string {
	switch u {
	case FlowUnitGPH:
		return "GPH"
	case FlowUnitPPH:
		return "PPH"
	case FlowUnitLPH:
		return "LPH"
	case FlowUnitKPH:
		return "KPH"
	default:
		return "unknown"
	}
}

// TempUnit identifies the engine temperature unit configured on the instrument.
type TempUnit int

const (
	TempUnitUnknown TempUnit = iota
	TempUnitFahrenheit
	TempUnitCelsius
)

func (u TempUnit) String() string {
	switch u {
	case TempUnitFahrenheit:
		return "F"
	case TempUnitCelsius:
		return "C"
	default:
		return "unknown"
	}
}

// Alarms holds the operator-configured warning thresholds embedded in the
// header. A populated Alarms value always carries all eight thresholds; a
// partially decoded alarm line never reaches the aggregate.
type Alarms struct {
	VoltsMax       float64 `json:"voltsMax"`
	VoltsMin       float64 `json:"voltsMin"`
	EGTSpreadMax   int     `json:"egtSpreadMax"`
	CHTMax         int     `json:"chtMax"`
	CHTCoolRateMax int     `json:"chtCoolRateMax"`
	EGTMax         int     `json:"egtMax"`
	OilTempMax     int     `json:"oilTempMax"`
	OilTempMin     int     `json:"oilTempMin"`
}

// Fuel holds fuel-flow configuration: units, tank levels and the flow sensor
// calibration constants (k-factors). No header tag is wired to this record
// yet; it stays unset on every decode.
type Fuel struct {
	FlowUnit     FuelFlowUnit `json:"flowUnit"`
	FullLevel    int          `json:"fullLevel"`
	WarningLevel int          `json:"warningLevel"`
	KFactorFF1   int          `json:"kFactorFF1"`
	KFactorFF2   int          `json:"kFactorFF2"`
}

// Sensors describes the installed-sensor inventory.
type Sensors struct {
	EGTCount int  `json:"egtCount"`
	CHTCount int  `json:"chtCount"`
	Volts    bool `json:"volts"`
	OilTemp  bool `json:"oilTemp"`
	TIT1     bool `json:"tit1"`
	TIT2     bool `json:"tit2"`
	OAT      bool `json:"oat"`
	FuelFlow bool `json:"fuelFlow"`
	IAT      bool `json:"iat"`
	CDT      bool `json:"cdt"`
	MAP      bool `json:"map"`
	RPM      bool `json:"rpm"`
}

// Features identifies the instrument model, firmware and sensor fit. Like
// Fuel, no header tag is wired to this record yet.
type Features struct {
	Model           int      `json:"model"`
	FirmwareVersion int      `json:"firmwareVersion"`
	Sensors         *Sensors `json:"sensors,omitempty"`
	EngineTempUnit  TempUnit `json:"engineTempUnit"`
	Unknown1        int      `json:"unknown1"`
	Unknown2        int      `json:"unknown2"`
}

// HeaderRecord is the decoded header aggregate. Each sub-record is either
// fully populated or nil; absence of the owning tag line leaves the pointer
// nil without being an error.
type HeaderRecord struct {
	Registration    *string   `json:"registration,omitempty"`
	Alarms          *Alarms   `json:"alarms,omitempty"`
	Fuel            *Fuel     `json:"fuel,omitempty"`
	Features        *Features `json:"features,omitempty"`
	DownloadTime    *int64    `json:"downloadTime,omitempty"`
	ProtocolVersion *int      `json:"protocolVersion,omitempty"`
}
