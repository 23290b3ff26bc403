package invoice

// Selection is the closed set of values a host system allows for one tag,
// keyed by value with a human-readable label.
type Selection map[string]string

// Has reports whether v is an allowed value.
func (s Selection) Has(v string) bool {
	_, ok := s[v]
	return ok
}

var (
	// FromTypes are the kinds of debit account ("from type").
	FromTypes = Selection{
		"1": "Financial Account",
		"2": "Bank Account",
	}

	// TransactionOptions control how fast the transfer is executed.
	TransactionOptions = Selection{
		"1": "Standard transfer",
		"2": "Same-day transfer",
		"3": "Immediate transfer",
	}

	// TransferTypes apply to international transfers.
	TransferTypes = Selection{
		"21": "Foreign check",
		"53": "Standard transfer",
		"57": "Express delivery",
	}

	// CardCodes identify the payment card slip type.
	CardCodes = Selection{
		"01": "01",
		"04": "04",
		"15": "15",
		"71": "71",
		"73": "73",
		"75": "75",
	}
)

// Defaults applied when a payment term leaves the tag unset.
const (
	DefaultTransactionOption = "1"
	DefaultTransferType      = "53"
)
