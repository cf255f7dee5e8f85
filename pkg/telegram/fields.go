package telegram

// FieldSpec maps an OBIS code prefix to a dictionary key and the character
// span holding the value. The spans are tied to the Fluvius meter firmware's
// line formatting and must not be generalised to a full OBIS grammar.
type FieldSpec struct {
	Prefix string
	Key    string
	Start  int
	End    int
}

// Fields is applied in order and every matching spec is tried, not just the
// first: the gas value and gas timestamp share the 0-1:24.2.3 prefix and are
// distinguished by their spans only.
var Fields = []FieldSpec{
	{"0-0:1.0.0", "timestamp", 10, 23},
	{"1-0:1.8.1", "total_consumption_day", 10, 20},
	{"1-0:1.8.2", "total_consumption_night", 10, 20},
	{"1-0:2.8.1", "total_injection_day", 10, 20},
	{"1-0:2.8.2", "total_injection_night", 10, 20},
	{"0-0:96.14.0", "actual_tariff", 12, 16},
	{"1-0:1.7.0", "actual_total_consumption", 10, 16},
	{"1-0:2.7.0", "actual_total_injection", 10, 16},
	{"1-0:21.7.0", "actual_l1_consumption", 11, 17},
	{"1-0:41.7.0", "actual_l2_consumption", 11, 17},
	{"1-0:61.7.0", "actual_l3_consumption", 11, 17},
	{"1-0:22.7.0", "actual_l1_injection", 11, 17},
	{"1-0:42.7.0", "actual_l2_injection", 11, 17},
	{"1-0:62.7.0", "actual_l3_injection", 11, 17},
	{"1-0:32.7.0", "l1_voltage", 11, 16},
	{"1-0:52.7.0", "l2_voltage", 11, 16},
	{"1-0:72.7.0", "l3_voltage", 11, 16},
	{"1-0:31.7.0", "l1_current", 11, 17},
	{"1-0:51.7.0", "l2_current", 11, 17},
	{"1-0:71.7.0", "l3_current", 11, 17},
	{"0-1:24.2.3", "total_gas_consumption", 26, 35},
	{"0-1:24.2.3", "gas_timestamp", 11, 24},
}

// FieldKeys returns the dictionary keys in table order.
// The CSV writer uses this as its header.
func FieldKeys() []string {
	keys := make([]string, 0, len(Fields))
	for _, f := range Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
