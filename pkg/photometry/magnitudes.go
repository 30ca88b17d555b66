package photometry

import "math"

// Default wavelength sampling of the Gaia DR3 XP sampled mean spectra:
// 3360 to 10200 Angstrom with a step of 20 Angstrom.
const (
	DefaultWaveStart = 3360.0
	DefaultWaveEnd   = 10200.0
	DefaultWaveStep  = 20.0
)

// FluxUnit identifies the physical units a flux density spectrum is
// expressed in.
type FluxUnit string

const (
	// UnitWattPerM2Nm is W m-2 nm-1, the storage convention.
	UnitWattPerM2Nm FluxUnit = "W m-2 nm-1"
	// UnitErgPerSCm2A is erg s-1 cm-2 A-1, the integration convention.
	UnitErgPerSCm2A FluxUnit = "erg s-1 cm-2 A-1"
)

// 1 W m-2 nm-1 = 100 erg s-1 cm-2 A-1.
const wattPerM2NmToErg = 100.0

// Magnitude is the synthetic photometry derived for one spectrum:
// the in-band flux density in W m-2 nm-1 and the AB and Vega
// magnitudes through the LVM AG passband.
type Magnitude struct {
	Flux float64
	AB   float64
	Vega float64
}

// DefaultWavelengthGrid returns the default wavelength sampling, in
// Angstrom, used when no grid is supplied with the spectra.
func DefaultWavelengthGrid() []float64 {
	n := int((DefaultWaveEnd-DefaultWaveStart)/DefaultWaveStep) + 1
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = DefaultWaveStart + float64(i)*DefaultWaveStep
	}
	return grid
}

// CalculateMagnitudes computes the in-band flux and the AB and Vega
// magnitudes for a batch of spectra (one spectrum per row). If wave is
// nil, the default wavelength grid is assumed; every row must have
// exactly len(wave) samples. The result always has one entry per row,
// in input order.
func CalculateMagnitudes(
	sflux [][]float64,
	wave []float64,
	choice Choice,
	unit FluxUnit,
) ([]Magnitude, error) {
	if wave == nil {
		wave = DefaultWavelengthGrid()
	}

	for i, row := range sflux {
		if len(row) != len(wave) {
			return nil, &ShapeMismatchError{
				Row: i, FluxLen: len(row), WaveLen: len(wave),
			}
		}
	}

	factor, err := unitFactor(unit)
	if err != nil {
		return nil, err
	}

	filter, err := LoadFilter(choice)
	if err != nil {
		return nil, err
	}

	scaled := make([]float64, len(wave))
	mags := make([]Magnitude, len(sflux))
	for i, row := range sflux {
		for j, v := range row {
			scaled[j] = v * factor
		}
		flux := filter.BandFlux(wave, scaled)
		mags[i] = Magnitude{
			Flux: flux / wattPerM2NmToErg,
			AB:   -2.5*math.Log10(flux) - filter.ABZeroMag(),
			Vega: -2.5*math.Log10(flux) - filter.VegaZeroMag(),
		}
	}
	return mags, nil
}

// CalculateMagnitude is the single-spectrum convenience form of
// CalculateMagnitudes.
func CalculateMagnitude(
	spectrum []float64,
	wave []float64,
	choice Choice,
	unit FluxUnit,
) (Magnitude, error) {
	mags, err := CalculateMagnitudes([][]float64{spectrum}, wave, choice, unit)
	if err != nil {
		return Magnitude{}, err
	}
	return mags[0], nil
}

// unitFactor returns the conversion factor from the given unit to
// erg s-1 cm-2 A-1, the convention the integration works in.
func unitFactor(unit FluxUnit) (float64, error) {
	switch unit {
	case UnitWattPerM2Nm, FluxUnit(""):
		return wattPerM2NmToErg, nil
	case UnitErgPerSCm2A:
		return 1.0, nil
	default:
		return 0, &UnknownUnitError{Unit: string(unit)}
	}
}
