// Package photometry converts flux spectra into synthetic magnitudes
// through the LVM autoguide camera passband.
//
// The package is pure: given the same spectra it always produces the
// same magnitudes. The filter transmission curve and the Vega reference
// spectrum are bundled as static calibration assets and must not be
// modified; only the transmission averaging policy (the filter choice)
// is selectable.
package photometry

import (
	"bufio"
	_ "embed"
	"math"
	"sort"
	"strconv"
	"strings"
)

//go:embed data/lvm_ag_transmission.txt
var transmissionTable string

//go:embed data/vega_alpha_lyr.txt
var vegaTable string

// Speed of light in Angstrom per second.
const cAngstrom = 2.99792458e18

// AB reference flux density, 3631 Jy expressed in erg s-1 cm-2 Hz-1.
const abReferenceJy = 3.631e-20

// Choice selects which variant of the bundled transmission curve to
// use. See Section 4 in LVM-0059.
type Choice string

const (
	// ChoiceOptimistic uses the optimistic transmission estimate.
	ChoiceOptimistic Choice = "optimistic"
	// ChoicePessimistic uses the pessimistic transmission estimate.
	ChoicePessimistic Choice = "pessimistic"
	// ChoiceMean uses the point-wise average of the optimistic and
	// pessimistic estimates. This is the default.
	ChoiceMean Choice = "mean"
)

// ParseChoice validates a filter choice string. An empty string maps
// to ChoiceMean.
func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToLower(strings.TrimSpace(s))) {
	case ChoiceOptimistic:
		return ChoiceOptimistic, nil
	case ChoicePessimistic:
		return ChoicePessimistic, nil
	case ChoiceMean, Choice(""):
		return ChoiceMean, nil
	default:
		return "", &UnknownChoiceError{Choice: s}
	}
}

// Filter is the LVM AG passband for one transmission variant. It uses
// the photon-counting convention: band fluxes are wavelength-weighted
// averages of the flux density through the transmission curve.
type Filter struct {
	name        Choice
	wavelength  []float64 // Angstrom, ascending
	transmission []float64

	abZeroMag   float64
	vegaZeroMag float64
}

// LoadFilter builds the Filter for the given choice from the bundled
// transmission table. The table stores wavelengths in nm; they are
// converted to Angstrom here.
func LoadFilter(choice Choice) (*Filter, error) {
	if _, err := ParseChoice(string(choice)); err != nil {
		return nil, err
	}

	wave, opt, pess, err := parseTransmissionTable(transmissionTable)
	if err != nil {
		return nil, err
	}

	transmit := make([]float64, len(wave))
	switch choice {
	case ChoiceOptimistic:
		copy(transmit, opt)
	case ChoicePessimistic:
		copy(transmit, pess)
	default:
		for i := range wave {
			transmit[i] = 0.5 * (opt[i] + pess[i])
		}
	}

	f := &Filter{
		name:        choice,
		wavelength:  wave,
		transmission: transmit,
	}

	if err := f.calibrate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Name returns the transmission variant of the filter.
func (f *Filter) Name() Choice { return f.name }

// ABZeroMag returns the AB magnitude zeropoint of the passband.
func (f *Filter) ABZeroMag() float64 { return f.abZeroMag }

// VegaZeroMag returns the Vega magnitude zeropoint of the passband.
func (f *Filter) VegaZeroMag() float64 { return f.vegaZeroMag }

// BandFlux integrates a flux density spectrum (erg s-1 cm-2 A-1 on an
// ascending wavelength grid in Angstrom) through the transmission
// curve with photon-counting weighting:
//
//	<f> = Int f(l) T(l) l dl / Int T(l) l dl
//
// The transmission is interpolated onto the spectrum grid, so the
// spectrum must cover the passband.
func (f *Filter) BandFlux(wave, flux []float64) float64 {
	var num, den float64
	for i := 0; i < len(wave)-1; i++ {
		dl := wave[i+1] - wave[i]
		w0 := f.transmissionAt(wave[i]) * wave[i]
		w1 := f.transmissionAt(wave[i+1]) * wave[i+1]
		num += 0.5 * dl * (flux[i]*w0 + flux[i+1]*w1)
		den += 0.5 * dl * (w0 + w1)
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// calibrate derives the AB and Vega zeropoints by pushing the two
// reference spectra through the passband on its native grid.
func (f *Filter) calibrate() error {
	abFlux := f.referenceBandFlux(func(l float64) float64 {
		return abReferenceJy * cAngstrom / (l * l)
	})

	vegaWave, vegaFlux, err := parseVegaTable(vegaTable)
	if err != nil {
		return err
	}
	vega := f.referenceBandFlux(func(l float64) float64 {
		return interpolate(vegaWave, vegaFlux, l)
	})

	f.abZeroMag = -2.5 * math.Log10(abFlux)
	f.vegaZeroMag = -2.5 * math.Log10(vega)
	return nil
}

// referenceBandFlux evaluates BandFlux for an analytic reference
// spectrum on the filter's native wavelength grid.
func (f *Filter) referenceBandFlux(fluxAt func(float64) float64) float64 {
	var num, den float64
	for i := 0; i < len(f.wavelength)-1; i++ {
		l0, l1 := f.wavelength[i], f.wavelength[i+1]
		dl := l1 - l0
		w0 := f.transmission[i] * l0
		w1 := f.transmission[i+1] * l1
		num += 0.5 * dl * (fluxAt(l0)*w0 + fluxAt(l1)*w1)
		den += 0.5 * dl * (w0 + w1)
	}
	return num / den
}

// transmissionAt linearly interpolates the transmission curve. Outside
// the tabulated range the passband is opaque.
func (f *Filter) transmissionAt(l float64) float64 {
	return interpolate(f.wavelength, f.transmission, l)
}

// interpolate performs linear interpolation of y(x) at xq, returning
// zero outside the tabulated range. x must be ascending.
func interpolate(x, y []float64, xq float64) float64 {
	if xq < x[0] || xq > x[len(x)-1] {
		return 0
	}
	i := sort.SearchFloat64s(x, xq)
	if i < len(x) && x[i] == xq {
		return y[i]
	}
	t := (xq - x[i-1]) / (x[i] - x[i-1])
	return y[i-1] + t*(y[i]-y[i-1])
}

// parseTransmissionTable reads the bundled wave/optimistic/pessimistic
// columns. Wavelengths are stored in nm and converted to Angstrom.
func parseTransmissionTable(table string) (wave, opt, pess []float64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(table))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, nil, nil, &CalibrationTableError{
				Table: "transmission", Line: line,
			}
		}
		vals := make([]float64, 3)
		for i, field := range fields {
			vals[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, &CalibrationTableError{
					Table: "transmission", Line: line, Err: err,
				}
			}
		}
		wave = append(wave, vals[0]*10) // nm -> Angstrom
		opt = append(opt, vals[1])
		pess = append(pess, vals[2])
	}
	return wave, opt, pess, nil
}

// parseVegaTable reads the bundled Vega reference spectrum
// (wavelength in Angstrom, flux in erg s-1 cm-2 A-1).
func parseVegaTable(table string) (wave, flux []float64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(table))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, nil, &CalibrationTableError{Table: "vega", Line: line}
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, &CalibrationTableError{Table: "vega", Line: line, Err: err}
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, &CalibrationTableError{Table: "vega", Line: line, Err: err}
		}
		wave = append(wave, w)
		flux = append(flux, f)
	}
	return wave, flux, nil
}
