package classify

// Verdict is the overall nutritional status of one measurement.
type Verdict int

const (
	Normal Verdict = iota
	Overweight
	Moderate
	Severe
	// Recheck means no plausible z-score was left to classify.
	Recheck
)

// Category is the display group of a verdict.
type Category int

const (
	Green Category = iota
	Yellow
	Red
	Grey
)

// String returns the canonical name of the verdict.
func (v Verdict) String() string {
	switch v {
	case Normal:
		return "normal"
	case Overweight:
		return "overweight"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	case Recheck:
		return "recheck"
	default:
		return "unknown"
	}
}

// ParseVerdict converts the canonical name back into Verdict. Unknown
// names give Recheck.
func ParseVerdict(s string) Verdict {
	for _, v := range []Verdict{Normal, Overweight, Moderate, Severe} {
		if v.String() == s {
			return v
		}
	}
	return Recheck
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(b []byte) error {
	*v = ParseVerdict(string(b))
	return nil
}

// Severity orders verdicts from Normal (0) to Severe (3). Recheck has
// no severity and returns -1.
func (v Verdict) Severity() int {
	switch v {
	case Normal:
		return 0
	case Overweight:
		return 1
	case Moderate:
		return 2
	case Severe:
		return 3
	default:
		return -1
	}
}

// Category maps every verdict to its display group.
func (v Verdict) Category() Category {
	switch v {
	case Normal:
		return Green
	case Overweight, Moderate:
		return Yellow
	case Severe:
		return Red
	default:
		return Grey
	}
}

// Label is the caregiver-facing status label.
func (v Verdict) Label() string {
	switch v {
	case Normal:
		return "Normal"
	case Overweight:
		return "Berisiko"
	case Moderate:
		return "Gizi Kurang"
	case Severe:
		return "Gizi Buruk"
	default:
		return "Ukur Ulang"
	}
}

// Advice is a short advisory sentence for caregivers. Every status
// defers to a health professional.
func (v Verdict) Advice() string {
	switch v {
	case Normal:
		return "Pertumbuhan sesuai usia. Lanjutkan pemantauan rutin di Posyandu."
	case Overweight:
		return "Berat badan di atas rentang normal. Diskusikan pola makan dengan kader atau bidan."
	case Moderate:
		return "Ada tanda kekurangan gizi. Periksakan anak ke Puskesmas dalam minggu ini."
	case Severe:
		return "Tanda gizi buruk. Segera bawa anak ke Puskesmas atau rumah sakit terdekat."
	default:
		return "Hasil pengukuran tidak wajar. Ukur ulang berat dan tinggi anak."
	}
}

func (c Category) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return "grey"
	}
}

// Color returns the hex color used for the category in reports.
func (c Category) Color() string {
	switch c {
	case Green:
		return "#16a34a"
	case Yellow:
		return "#ca8a04"
	case Red:
		return "#dc2626"
	default:
		return "#6b7280"
	}
}
