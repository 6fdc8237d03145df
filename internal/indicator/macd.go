package indicator

// MACD holds aligned MACD line, signal and histogram series. All three
// have the same length; index i of each refers to the same bar.
type MACD struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes MACD(fast, slow, signal). Both EMAs run over the
// full series; the signal line is the EMA of the MACD line.
func CalculateMACD(prices []float64, fast, slow, signal int) MACD {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACD{}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	if len(slowEMA) == 0 {
		return MACD{}
	}

	// fastEMA starts slow-fast bars earlier than slowEMA
	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMA(line, signal)
	if len(signalLine) == 0 {
		return MACD{}
	}

	line = line[len(line)-len(signalLine):]
	hist := make([]float64, len(signalLine))
	for i := range signalLine {
		hist[i] = line[i] - signalLine[i]
	}

	return MACD{Line: line, Signal: signalLine, Histogram: hist}
}
