// README: Rate card definition for each service category.
package pricing

// Rate prices one service category within a state. A row with state "*" is
// the country-wide fallback. Amounts are in kobo.
type Rate struct {
	Category   string
	State      string
	BaseFare   int64
	CalloutFee int64
	Currency   string
}
