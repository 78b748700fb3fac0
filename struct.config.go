package mlhb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/upde12/mlhb/profile"
	"gopkg.in/ini.v1"
)

// WeMode selects the entrainment-velocity formulation. The set is closed and
// chosen once per run; per-cell branching on mode is not permitted.
type WeMode int

const (
	WeDhdt      WeMode = iota // forward dh/dt only
	WeDeepening               // forward dh/dt clipped to deepening
	WeCentered                // centered dh/dt
	WeFull                    // forward dh/dt plus div(h·v)
)

func ParseWeMode(s string) (WeMode, error) {
	switch strings.ToLower(s) {
	case "dhdt":
		return WeDhdt, nil
	case "deepening":
		return WeDeepening, nil
	case "centered":
		return WeCentered, nil
	case "full":
		return WeFull, nil
	}
	return 0, fmt.Errorf("unknown entrainment mode %q (dhdt|deepening|centered|full)", s)
}

func (m WeMode) String() string {
	switch m {
	case WeDhdt:
		return "dhdt"
	case WeDeepening:
		return "deepening"
	case WeCentered:
		return "centered"
	case WeFull:
		return "full"
	}
	return "unknown"
}

func ParseVGrad(s string) (profile.GradientMode, error) {
	switch strings.ToLower(s) {
	case "2pt":
		return profile.Grad2pt, nil
	case "lsq":
		return profile.GradLSQ, nil
	}
	return 0, fmt.Errorf("unknown vertical gradient estimator %q (2pt|lsq)", s)
}

// Config is the immutable run-wide configuration. Built once at startup,
// passed by reference, never mutated mid-run.
type Config struct {
	Ah      float64              // horizontal diffusivity [m²/s]
	Kv      float64              // vertical diffusivity [m²/s]
	Hmin    float64              // floor on the thickness denominator [m]
	Mode    WeMode               // entrainment-velocity formulation
	UseHbar bool                 // divide by the two-day mean thickness instead of today's
	WeCap   float64              // cap on |w_e| [m/day], 0 disables
	Cooling bool                 // clamp entrainment to cooling only
	DTCap   float64              // cap on |Tm-Tb| in the entrainment term [K], 0 disables
	EntCap  float64              // cap on |ENT| [K/day], 0 disables
	VGrad   profile.GradientMode // base-gradient estimator for vertical diffusion
	ClosTol float64              // closure residual diagnostic tolerance [K/s]

	RSw            float64 // shortwave fast-band fraction
	Gamma1, Gamma2 float64 // shortwave attenuation lengths [m]

	Indir, Outdir, Fluxdir string
	GridFP                 string // grid definition gob
	FluxBaseYear           int    // first year of the flux archives

	Years   []int
	Workers int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Ah:           defAh,
		Kv:           defKv,
		Hmin:         defHmin,
		Mode:         WeDeepening,
		Cooling:      true,
		VGrad:        profile.Grad2pt,
		ClosTol:      defClosTol,
		RSw:          defRSw,
		Gamma1:       defGamma1,
		Gamma2:       defGamma2,
		FluxBaseYear: 1993,
		Workers:      1,
	}
}

// LoadConfig reads a control file over the defaults.
func LoadConfig(fp string) (*Config, error) {
	c := DefaultConfig()
	file, err := ini.Load(fp)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}

	p := file.Section("paths")
	c.Indir = p.Key("indir").String()
	c.Outdir = p.Key("outdir").String()
	c.Fluxdir = p.Key("fluxdir").String()
	c.GridFP = p.Key("gridfile").String()

	e := file.Section("engine")
	c.Ah = e.Key("ah").MustFloat64(c.Ah)
	c.Kv = e.Key("kv").MustFloat64(c.Kv)
	c.Hmin = e.Key("hmin").MustFloat64(c.Hmin)
	c.UseHbar = e.Key("hbar").MustBool(c.UseHbar)
	c.WeCap = e.Key("wecap").MustFloat64(c.WeCap)
	c.Cooling = e.Key("cooling").MustBool(c.Cooling)
	c.DTCap = e.Key("dtcap").MustFloat64(c.DTCap)
	c.EntCap = e.Key("entcap").MustFloat64(c.EntCap)
	c.ClosTol = e.Key("clostol").MustFloat64(c.ClosTol)
	c.RSw = e.Key("rsw").MustFloat64(c.RSw)
	c.Gamma1 = e.Key("gamma1").MustFloat64(c.Gamma1)
	c.Gamma2 = e.Key("gamma2").MustFloat64(c.Gamma2)
	if s := e.Key("wemode").String(); len(s) > 0 {
		if c.Mode, err = ParseWeMode(s); err != nil {
			return nil, err
		}
	}
	if s := e.Key("vgrad").String(); len(s) > 0 {
		if c.VGrad, err = ParseVGrad(s); err != nil {
			return nil, err
		}
	}

	r := file.Section("run")
	c.FluxBaseYear = r.Key("fluxbaseyear").MustInt(c.FluxBaseYear)
	c.Workers = r.Key("workers").MustInt(c.Workers)
	if s := r.Key("years").String(); len(s) > 0 {
		if c.Years, err = ParseYears(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ParseYears accepts a first:last range or a comma-separated list.
func ParseYears(s string) ([]int, error) {
	if strings.Contains(s, ":") {
		p := strings.SplitN(s, ":", 2)
		y0, err := strconv.Atoi(strings.TrimSpace(p[0]))
		if err != nil {
			return nil, fmt.Errorf("years %q: %v", s, err)
		}
		y1, err := strconv.Atoi(strings.TrimSpace(p[1]))
		if err != nil {
			return nil, fmt.Errorf("years %q: %v", s, err)
		}
		if y1 < y0 {
			return nil, fmt.Errorf("years %q: descending range", s)
		}
		yrs := make([]int, 0, y1-y0+1)
		for y := y0; y <= y1; y++ {
			yrs = append(yrs, y)
		}
		return yrs, nil
	}
	var yrs []int
	for _, f := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("years %q: %v", s, err)
		}
		yrs = append(yrs, y)
	}
	return yrs, nil
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	if c.Ah < 0 || c.Kv < 0 {
		return fmt.Errorf("config: diffusivities must be non-negative (ah=%g, kv=%g)", c.Ah, c.Kv)
	}
	if c.Hmin < 0 || c.WeCap < 0 || c.DTCap < 0 || c.EntCap < 0 {
		return fmt.Errorf("config: caps and floors must be non-negative")
	}
	if c.RSw < 0 || c.RSw > 1 {
		return fmt.Errorf("config: shortwave band fraction %g outside [0,1]", c.RSw)
	}
	if c.Gamma1 <= 0 || c.Gamma2 <= 0 {
		return fmt.Errorf("config: attenuation lengths must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1")
	}
	if len(c.Years) == 0 {
		return fmt.Errorf("config: no years requested")
	}
	return nil
}
