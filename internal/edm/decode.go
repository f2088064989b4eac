package edm

import (
	"fmt"
	"strconv"
)

// DecodeFunc consumes the field tokens of one checksum-valid header line and
// updates the record being assembled. Returned errors are wrapped into a
// LineError by the aggregator; they abort the decode only in strict mode.
type DecodeFunc func(rec *HeaderRecord, tokens []string) error

// defaultDecoders maps line tags to their field decoders. Fuel ('F'-style
// configuration lines) and feature/sensor inventory lines are modeled in
// HeaderRecord but intentionally have no entry here; files that carry them
// decode with those fields unset.
func defaultDecoders() map[byte]DecodeFunc {
	return map[byte]DecodeFunc{
		tagRegistration: decodeRegistration,
		tagAlarms:       decodeAlarms,
	}
}

const (
	tagRegistration = byte('U')
	tagAlarms       = byte('A')

	alarmTokenCount = 8
	voltsScale      = 10.0
)

func decodeRegistration(rec *HeaderRecord, tokens []string) error {
	if len(tokens) != 1 {
		return fmt.Errorf("%w: registration expects 1 token, got %d", ErrUnexpectedTokenCount, len(tokens))
	}
	reg := tokens[0]
	rec.Registration = &reg
	return nil
}

func decodeAlarms(rec *HeaderRecord, tokens []string) error {
	if len(tokens) < alarmTokenCount {
		return fmt.Errorf("%w: got %d", ErrTruncatedAlarmLine, len(tokens))
	}
	voltsMax, err := parseAlarmFloat(tokens[0])
	if err != nil {
		return err
	}
	voltsMin, err := parseAlarmFloat(tokens[1])
	if err != nil {
		return err
	}
	ints := make([]int, 6)
	for i, tok := range tokens[2:alarmTokenCount] {
		v, err := parseAlarmInt(tok)
		if err != nil {
			return err
		}
		ints[i] = v
	}
	// Tokens beyond the eighth are ignored.
	rec.Alarms = &Alarms{
		VoltsMax:       voltsMax / voltsScale,
		VoltsMin:       voltsMin / voltsScale,
		EGTSpreadMax:   ints[0],
		CHTMax:         ints[1],
		CHTCoolRateMax: ints[2],
		EGTMax:         ints[3],
		OilTempMax:     ints[4],
		OilTempMin:     ints[5],
	}
	return nil
}

func parseAlarmFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &tokenError{token: tok, err: ErrUnparseableNumericToken}
	}
	return v, nil
}

func parseAlarmInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &tokenError{token: tok, err: ErrUnparseableNumericToken}
	}
	return v, nil
}
