package mds

// Attribute names used on variables.
const (
	AttrStandardName = "standard_name"
	AttrLongName     = "long_name"
	AttrUnits        = "units"
	AttrAxis         = "axis"
	AttrSwapDim      = "swap_dim"
	AttrAxisShift    = "c_grid_axis_shift"
	AttrPositive     = "positive"
	AttrCalendar     = "calendar"
)

type attrs = map[string]string

// An axis is one index dimension of the model grid.
type axis struct {
	name string
	// coord is the variable the axis is relabelled with by WithSwapDims.
	coord string
	attrs attrs
}

var horizontalAxes = []axis{
	{"i", "XC", attrs{AttrStandardName: "x_grid_index", AttrAxis: "X",
		AttrLongName: "x-dimension of the t grid"}},
	{"i_g", "XG", attrs{AttrStandardName: "x_grid_index_at_u_location", AttrAxis: "X",
		AttrLongName: "x-dimension of the u grid", AttrAxisShift: "-0.5"}},
	{"j", "YC", attrs{AttrStandardName: "y_grid_index", AttrAxis: "Y",
		AttrLongName: "y-dimension of the t grid"}},
	{"j_g", "YG", attrs{AttrStandardName: "y_grid_index_at_v_location", AttrAxis: "Y",
		AttrLongName: "y-dimension of the v grid", AttrAxisShift: "-0.5"}},
}

var verticalAxes = []axis{
	{"k", "Z", attrs{AttrStandardName: "z_grid_index", AttrAxis: "Z",
		AttrLongName: "z-dimension of the t grid"}},
	{"k_u", "Zu", attrs{AttrStandardName: "z_grid_index_at_lower_w_location", AttrAxis: "Z",
		AttrLongName: "z-dimension of the w grid", AttrAxisShift: "0.5"}},
	{"k_l", "Zl", attrs{AttrStandardName: "z_grid_index_at_upper_w_location", AttrAxis: "Z",
		AttrLongName: "z-dimension of the w grid", AttrAxisShift: "-0.5"}},
	{"k_p1", "Zp1", attrs{AttrStandardName: "z_grid_index_at_w_location", AttrAxis: "Z",
		AttrLongName: "z-dimension of the w grid", AttrAxisShift: "-0.5 0.5"}},
}

// A gridVar is read from a grid file without iteration suffix.
type gridVar struct {
	name string
	file string
	dims []string
	// alt is used instead of dims when the file's size matches it; older
	// runs wrote drC with nz points.
	alt []string
	// from is the leading offset into a one-dimensional file longer than
	// dims.
	from  int
	attrs attrs
}

var gridVars = []gridVar{
	{name: "XC", file: "XC", dims: []string{"j", "i"}, attrs: attrs{
		AttrStandardName: "longitude", AttrLongName: "longitude", AttrUnits: "degrees_east"}},
	{name: "YC", file: "YC", dims: []string{"j", "i"}, attrs: attrs{
		AttrStandardName: "latitude", AttrLongName: "latitude", AttrUnits: "degrees_north"}},
	{name: "XG", file: "XG", dims: []string{"j_g", "i_g"}, attrs: attrs{
		AttrStandardName: "longitude_at_f_location", AttrLongName: "longitude", AttrUnits: "degrees_east"}},
	{name: "YG", file: "YG", dims: []string{"j_g", "i_g"}, attrs: attrs{
		AttrStandardName: "latitude_at_f_location", AttrLongName: "latitude", AttrUnits: "degrees_north"}},
	{name: "Z", file: "RC", dims: []string{"k"}, attrs: attrs{
		AttrStandardName: "depth", AttrLongName: "vertical coordinate of cell center",
		AttrUnits: "m", AttrPositive: "up"}},
	{name: "Zp1", file: "RF", dims: []string{"k_p1"}, attrs: attrs{
		AttrStandardName: "depth_at_w_location", AttrLongName: "vertical coordinate of cell interface",
		AttrUnits: "m", AttrPositive: "up"}},
	{name: "Zu", file: "RF", dims: []string{"k_u"}, from: 1, attrs: attrs{
		AttrStandardName: "depth_at_lower_w_location", AttrLongName: "vertical coordinate of lower cell interface",
		AttrUnits: "m", AttrPositive: "up"}},
	{name: "Zl", file: "RF", dims: []string{"k_l"}, attrs: attrs{
		AttrStandardName: "depth_at_upper_w_location", AttrLongName: "vertical coordinate of upper cell interface",
		AttrUnits: "m", AttrPositive: "up"}},
	{name: "rA", file: "RAC", dims: []string{"j", "i"}, attrs: attrs{
		AttrStandardName: "cell_area", AttrLongName: "cell area", AttrUnits: "m2"}},
	{name: "rAw", file: "RAW", dims: []string{"j", "i_g"}, attrs: attrs{
		AttrStandardName: "cell_area_at_u_location", AttrLongName: "cell area", AttrUnits: "m2"}},
	{name: "rAs", file: "RAS", dims: []string{"j_g", "i"}, attrs: attrs{
		AttrStandardName: "cell_area_at_v_location", AttrLongName: "cell area", AttrUnits: "m2"}},
	{name: "rAz", file: "RAZ", dims: []string{"j_g", "i_g"}, attrs: attrs{
		AttrStandardName: "cell_area_at_f_location", AttrLongName: "cell area", AttrUnits: "m2"}},
	{name: "dxG", file: "DXG", dims: []string{"j_g", "i"}, attrs: attrs{
		AttrStandardName: "cell_x_size_at_v_location", AttrLongName: "cell x size", AttrUnits: "m"}},
	{name: "dyG", file: "DYG", dims: []string{"j", "i_g"}, attrs: attrs{
		AttrStandardName: "cell_y_size_at_u_location", AttrLongName: "cell y size", AttrUnits: "m"}},
	{name: "dxC", file: "DXC", dims: []string{"j", "i_g"}, attrs: attrs{
		AttrStandardName: "cell_x_size_at_u_location", AttrLongName: "cell x size", AttrUnits: "m"}},
	{name: "dyC", file: "DYC", dims: []string{"j_g", "i"}, attrs: attrs{
		AttrStandardName: "cell_y_size_at_v_location", AttrLongName: "cell y size", AttrUnits: "m"}},
	{name: "Depth", file: "Depth", dims: []string{"j", "i"}, attrs: attrs{
		AttrStandardName: "ocean_depth", AttrLongName: "ocean depth", AttrUnits: "m"}},
	{name: "drC", file: "DRC", dims: []string{"k_p1"}, alt: []string{"k"}, attrs: attrs{
		AttrStandardName: "cell_z_size_at_w_location", AttrLongName: "cell z size", AttrUnits: "m"}},
	{name: "drF", file: "DRF", dims: []string{"k"}, attrs: attrs{
		AttrStandardName: "cell_z_size", AttrLongName: "cell z size", AttrUnits: "m"}},
	{name: "hFacC", file: "hFacC", dims: []string{"k", "j", "i"}, attrs: attrs{
		AttrStandardName: "cell_vertical_fraction", AttrLongName: "vertical fraction of open cell"}},
	{name: "hFacW", file: "hFacW", dims: []string{"k", "j", "i_g"}, attrs: attrs{
		AttrStandardName: "cell_vertical_fraction_at_u_location", AttrLongName: "vertical fraction of open cell"}},
	{name: "hFacS", file: "hFacS", dims: []string{"k", "j_g", "i"}, attrs: attrs{
		AttrStandardName: "cell_vertical_fraction_at_v_location", AttrLongName: "vertical fraction of open cell"}},
	{name: "PHrefC", file: "PHrefC", dims: []string{"k"}, attrs: attrs{
		AttrStandardName: "cell_reference_pressure", AttrLongName: "Reference Hydrostatic Pressure",
		AttrUnits: "m2 s-2"}},
	{name: "PHrefF", file: "PHrefF", dims: []string{"k_p1"}, attrs: attrs{
		AttrStandardName: "interface_reference_pressure", AttrLongName: "Reference Hydrostatic Pressure",
		AttrUnits: "m2 s-2"}},
}

// GridVariables returns the names of the grid variables Open reads.
func GridVariables() []string {
	names := make([]string, len(gridVars))
	for i, v := range gridVars {
		names[i] = v.name
	}
	return names
}

type stateVar struct {
	dims  []string
	attrs attrs
}

// stateVars are the model's prognostic snapshot files.
var stateVars = map[string]stateVar{
	"U": {[]string{"k", "j", "i_g"}, attrs{
		AttrStandardName: "sea_water_x_velocity", AttrLongName: "Zonal Component of Velocity", AttrUnits: "m s-1"}},
	"V": {[]string{"k", "j_g", "i"}, attrs{
		AttrStandardName: "sea_water_y_velocity", AttrLongName: "Meridional Component of Velocity", AttrUnits: "m s-1"}},
	"W": {[]string{"k_l", "j", "i"}, attrs{
		AttrStandardName: "sea_water_z_velocity", AttrLongName: "Vertical Component of Velocity", AttrUnits: "m s-1"}},
	"T": {[]string{"k", "j", "i"}, attrs{
		AttrStandardName: "sea_water_potential_temperature", AttrLongName: "Potential Temperature", AttrUnits: "degree_Celcius"}},
	"S": {[]string{"k", "j", "i"}, attrs{
		AttrStandardName: "sea_water_salinity", AttrLongName: "Salinity", AttrUnits: "psu"}},
	"PH": {[]string{"k", "j", "i"}, attrs{
		AttrStandardName: "sea_water_dynamic_pressure", AttrLongName: "Hydrostatic Pressure Pot.(p/rho) Anomaly",
		AttrUnits: "m2 s-2"}},
	"PHL": {[]string{"j", "i"}, attrs{
		AttrStandardName: "sea_water_dynamic_pressure_at_sea_floor", AttrLongName: "Bottom Pressure Pot.(p/rho) Anomaly",
		AttrUnits: "m2 s-2"}},
	"Eta": {[]string{"j", "i"}, attrs{
		AttrStandardName: "sea_surface_height_above_geoid", AttrLongName: "Surface Height Anomaly", AttrUnits: "m"}},
}

// recordNames names the records of well-known multi-record files. It takes
// precedence over a fldList in the metadata.
var recordNames = map[string][]string{
	"DiagGAD-T": {"TOTTTEND", "ADVr_TH", "ADVx_TH", "ADVy_TH", "DFrE_TH", "DFxE_TH",
		"DFyE_TH", "DFrI_TH", "UTHMASS", "VTHMASS", "WTHMASS"},
	"DiagGAD-S": {"TOTSTEND", "ADVr_SLT", "ADVx_SLT", "ADVy_SLT", "DFrE_SLT", "DFxE_SLT",
		"DFyE_SLT", "DFrI_SLT", "USLTMASS", "VSLTMASS", "WSLTMASS"},
}
