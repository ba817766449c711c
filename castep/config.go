/*
 * config.go, part of msicastep.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package castep

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/msi"
)

// ConfigFile is the name of the run configuration looked up in the working
// directory when none is given.
const ConfigFile = "msicastep.toml"

// Task is a kind of CASTEP calculation.
type Task int

const (
	GeometryOptimization Task = iota
	BandStructure
)

func (t Task) String() string {
	if t == BandStructure {
		return "BandStructure"
	}
	return "GeometryOptimization"
}

// Config is the run configuration of a conversion, as read from a TOML file.
type Config struct {
	Seed      SeedConfig      `toml:"seed"`
	Castep    CastepConfig    `toml:"castep"`
	Parser    ParserConfig    `toml:"parser"`
	Transform TransformConfig `toml:"transform"`
}

// SeedConfig sets where and what is written.
type SeedConfig struct {
	Name        string `toml:"name"`         //seed name, the input file stem if empty
	Dir         string `toml:"dir"`          //the seed directory <Dir>/<Name>_opt is created here
	Task        string `toml:"task"`         //geom, bs or both
	Potentials  string `toml:"potentials"`   //directory with the .usp files, no copying if empty
	CompressMSI bool   `toml:"compress_msi"` //also write a zstd-compressed copy of the msi file
	Preview     bool   `toml:"preview"`      //write an svg projection of the structure
	RunCastep   string `toml:"run_castep"`   //launcher called by the LSF job script
	Cores       int    `toml:"cores"`        //MPI processes requested by the job scripts
}

// CastepConfig holds the calculation settings that end up in the .cell and .param files.
type CastepConfig struct {
	CutOffEnergy     float64      `toml:"cut_off_energy"` //eV, 0 means take it from the potentials
	XCFunctional     string       `toml:"xc_functional"`
	SpinPolarized    bool         `toml:"spin_polarized"`
	MetalsMethod     string       `toml:"metals_method"` //dm or edft
	SmearingWidth    float64      `toml:"smearing_width"`
	KPointsList      [][4]float64 `toml:"kpoints_list"`
	MPGrid           [3]int       `toml:"mp_grid"`
	MPOffset         [3]float64   `toml:"mp_offset"`
	FixAllCell       bool         `toml:"fix_all_cell"`
	FixCOM           bool         `toml:"fix_com"`
	ExternalEfield   [3]float64   `toml:"external_efield"`
	ExternalPressure [6]float64   `toml:"external_pressure"` //Rxx Rxy Rxz Ryy Ryz Rzz
}

// ParserConfig holds the options for the msi parser.
type ParserConfig struct {
	Policy   string `toml:"policy"` //extract or preserve
	MaxDepth int    `toml:"max_depth"`
}

// TransformConfig holds the options for the geometric transformations.
type TransformConfig struct {
	Cpus int `toml:"cpus"` //0 means one per CPU
}

// DefaultCutOff is the plane-wave cut-off, in eV, used when neither the configuration
// nor the potential files give one.
const DefaultCutOff = 380.0

// DefaultConfig returns the configuration Materials Studio uses for a new CASTEP job.
func DefaultConfig() *Config {
	return &Config{
		Seed: SeedConfig{
			Dir:       ".",
			Task:      "both",
			RunCastep: "RunCASTEP.sh",
			Cores:     12,
		},
		Castep: CastepConfig{
			XCFunctional:  "PBE",
			SpinPolarized: true,
			MetalsMethod:  "dm",
			SmearingWidth: 0.1,
			KPointsList:   [][4]float64{{0, 0, 0, 1}},
			MPGrid:        [3]int{1, 1, 1},
			FixAllCell:    true,
		},
		Parser: ParserConfig{
			Policy:   "extract",
			MaxDepth: 32,
		},
	}
}

// LoadConfig reads the TOML file name over the default configuration, so keys
// missing from the file keep their default values. Unknown keys are an error.
func LoadConfig(name string) (*Config, error) {
	c := DefaultConfig()
	md, err := toml.DecodeFile(name, c)
	if err != nil {
		return nil, chem.NewError(chem.ConfigError, err, "LoadConfig", "%s", name)
	}
	return c, errDecorate(c.check(md, name), "LoadConfig")
}

// DecodeConfig is like LoadConfig but reads the TOML document from a string.
func DecodeConfig(text string) (*Config, error) {
	c := DefaultConfig()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, chem.NewError(chem.ConfigError, err, "DecodeConfig", "")
	}
	return c, errDecorate(c.check(md, "<string>"), "DecodeConfig")
}

func (c *Config) check(md toml.MetaData, name string) error {
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return chem.NewError(chem.ConfigError, nil, "check", "%s: unknown keys %s", name, strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate returns a ConfigError if any value in the configuration is out of range.
func (c *Config) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return chem.NewError(chem.ConfigError, nil, "Validate", format, args...)
	}
	if _, err := c.Tasks(); err != nil {
		return errDecorate(err, "Validate")
	}
	cc := c.Castep
	if cc.CutOffEnergy < 0 {
		return bad("negative cut_off_energy %g", cc.CutOffEnergy)
	}
	if cc.SmearingWidth <= 0 {
		return bad("smearing_width must be positive, got %g", cc.SmearingWidth)
	}
	if _, err := ParseMetalsMethod(cc.MetalsMethod); err != nil {
		return errDecorate(err, "Validate")
	}
	if cc.XCFunctional == "" {
		return bad("empty xc_functional")
	}
	if len(cc.KPointsList) == 0 {
		return bad("kpoints_list needs at least one k-point")
	}
	for i, n := range cc.MPGrid {
		if n < 1 {
			return bad("mp_grid[%d] is %d, must be positive", i, n)
		}
	}
	if c.Seed.Cores < 1 {
		return bad("cores must be positive, got %d", c.Seed.Cores)
	}
	if _, err := msi.ParsePolicy(c.Parser.Policy); err != nil {
		return errDecorate(err, "Validate")
	}
	if c.Parser.MaxDepth < 0 {
		return bad("negative max_depth %d", c.Parser.MaxDepth)
	}
	if c.Transform.Cpus < 0 {
		return bad("negative cpus %d", c.Transform.Cpus)
	}
	return nil
}

// Tasks returns the calculations requested in the seed section.
func (c *Config) Tasks() ([]Task, error) {
	switch strings.ToLower(c.Seed.Task) {
	case "geom", "geometryoptimization":
		return []Task{GeometryOptimization}, nil
	case "bs", "bandstructure":
		return []Task{BandStructure}, nil
	case "both", "":
		return []Task{GeometryOptimization, BandStructure}, nil
	}
	return nil, chem.NewError(chem.ConfigError, nil, "Tasks", "unknown task %q, use geom, bs or both", c.Seed.Task)
}

// ParserOptions returns the msi parser options set in the configuration, logging to logger.
func (c *Config) ParserOptions(logger *log.Logger) (msi.Options, error) {
	o := msi.DefaultOptions()
	p, err := msi.ParsePolicy(c.Parser.Policy)
	if err != nil {
		return o, errDecorate(err, "ParserOptions")
	}
	o.Policy = p
	if c.Parser.MaxDepth > 0 {
		o.MaxDepth = c.Parser.MaxDepth
	}
	if logger != nil {
		o.Logger = logger
	}
	return o, nil
}

// TransformOptions returns the options for the geometric transformations.
func (c *Config) TransformOptions() *chem.Options {
	o := chem.DefaultOptions()
	o.Cpus(c.Transform.Cpus)
	return o
}

// MetalsMethod is the way CASTEP minimizes the electronic energy.
type MetalsMethod int

const (
	DensityMixing MetalsMethod = iota
	EDFT
)

func (m MetalsMethod) String() string {
	if m == EDFT {
		return "EDFT"
	}
	return "dm"
}

// ParseMetalsMethod returns the method for the names dm and edft, in any case.
func ParseMetalsMethod(s string) (MetalsMethod, error) {
	switch strings.ToLower(s) {
	case "dm", "densitymixing":
		return DensityMixing, nil
	case "edft":
		return EDFT, nil
	}
	return 0, chem.NewError(chem.ConfigError, nil, "ParseMetalsMethod", "unknown metals method %q", s)
}

// SettingPrefix starts the names of the Model settings that override the
// values of CastepConfig, e.g. CASTEP/cut_off_energy.
const SettingPrefix = "CASTEP/"

// WithModel returns a copy of c where the values set in mol with SettingPrefix
// keys replace those of c. The settings travel inside MSI files, so a structure
// can carry its own calculation parameters. Keys with the prefix that are not
// known, or have the wrong type, give a ConfigError.
func (c CastepConfig) WithModel(mol *chem.Model) (CastepConfig, error) {
	c.KPointsList = append([][4]float64(nil), c.KPointsList...)
	for _, key := range mol.SettingKeys() {
		if !strings.HasPrefix(key, SettingPrefix) {
			continue
		}
		v, _ := mol.Setting(key)
		if err := c.set(strings.TrimPrefix(key, SettingPrefix), v); err != nil {
			return c, chem.NewError(chem.ConfigError, err, "WithModel", "setting %s", key)
		}
	}
	return c, nil
}

func (c *CastepConfig) set(name string, v chem.Value) error {
	nums := v.Floats()
	num := func() (float64, error) {
		if len(nums) != 1 {
			return 0, fmt.Errorf("expected one number, got %s", v)
		}
		return nums[0], nil
	}
	text := func() (string, error) {
		if v.Kind != chem.StringValue {
			return "", fmt.Errorf("expected a string, got %s", v)
		}
		return v.Str, nil
	}
	var err error
	switch name {
	case "cut_off_energy":
		c.CutOffEnergy, err = num()
	case "smearing_width":
		c.SmearingWidth, err = num()
	case "xc_functional":
		c.XCFunctional, err = text()
	case "metals_method":
		var s string
		if s, err = text(); err == nil {
			_, err = ParseMetalsMethod(s)
			c.MetalsMethod = s
		}
	case "spin_polarized":
		var f float64
		if f, err = num(); err == nil {
			c.SpinPolarized = f != 0
		}
	case "mp_grid":
		if v.Kind != chem.IntValue || len(v.Ints) != 3 {
			return fmt.Errorf("expected three integers, got %s", v)
		}
		for i, n := range v.Ints {
			c.MPGrid[i] = int(n)
		}
	case "mp_offset":
		if len(nums) != 3 {
			return fmt.Errorf("expected three numbers, got %s", v)
		}
		copy(c.MPOffset[:], nums)
	default:
		return fmt.Errorf("unknown CASTEP setting %q", name)
	}
	return err
}

// errDecorate decorates err with caller if err implements chem.Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
	}
	return err
}
