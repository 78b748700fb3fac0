package mlhb

const (
	nearzero  = 1e-12
	secperday = 86400.

	rhoSea = 1026. // seawater density [kg/m³]
	cpSea  = 4000. // seawater specific heat [J/kg/K]

	// default two-band shortwave penetration (Paulson & Simpson Type I water)
	defRSw    = .77 // fast-band fraction
	defGamma1 = 1.5 // fast-band attenuation length [m]
	defGamma2 = 14. // slow-band attenuation length [m]

	defAh      = 100. // horizontal diffusivity [m²/s]
	defKv      = 1e-4 // vertical diffusivity [m²/s]
	defHmin    = 10.  // mixed-layer depth floor [m]
	defClosTol = 1e-8 // closure residual tolerance [K/s]

	sanityWe = 500. / secperday // |w_e| beyond this (m/s) is reported when no cap is set
)
