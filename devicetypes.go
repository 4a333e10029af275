package netatmo

// DeviceType identifies a hardware device model as reported in the catalog's
// "type" field.
type DeviceType string

// Known device types.
const (
	// Climate/Energy
	DeviceNAPlug   DeviceType = "NAPlug"   // Smart thermostat gateway
	DeviceNATherm1 DeviceType = "NATherm1" // Smart thermostat
	DeviceNRV      DeviceType = "NRV"      // Smart valve
	DeviceOTH      DeviceType = "OTH"      // OpenTherm gateway
	DeviceOTM      DeviceType = "OTM"      // OpenTherm modulating thermostat

	// Cameras/Security
	DeviceNACamDoorTag DeviceType = "NACamDoorTag" // Smart door and window sensor
	DeviceNACamera     DeviceType = "NACamera"     // Smart indoor camera
	DeviceNCO          DeviceType = "NCO"          // Smart carbon monoxide alarm
	DeviceNDB          DeviceType = "NDB"          // Smart video doorbell
	DeviceNIS          DeviceType = "NIS"          // Smart indoor siren
	DeviceNOC          DeviceType = "NOC"          // Smart outdoor camera (with siren)
	DeviceNSD          DeviceType = "NSD"          // Smart smoke detector

	// Weather
	DeviceNAMain    DeviceType = "NAMain" // Smart home weather station
	DeviceNAModule1 DeviceType = "NAModule1"
	DeviceNAModule2 DeviceType = "NAModule2"
	DeviceNAModule3 DeviceType = "NAModule3"
	DeviceNAModule4 DeviceType = "NAModule4"
	DevicePublic    DeviceType = "public"

	// Home Coach
	DeviceNHC DeviceType = "NHC" // Smart indoor air quality monitor

	// Legrand wiring devices and electrical panel products
	DeviceNLC       DeviceType = "NLC"  // Cable outlet
	DeviceNLD       DeviceType = "NLD"  // Dimmer
	DeviceNLDD      DeviceType = "NLDD" // Dimmer
	DeviceNLE       DeviceType = "NLE"  // Connected ecometer
	DeviceNLF       DeviceType = "NLF"  // Dimmer light switch
	DeviceNLFE      DeviceType = "NLFE" // Dimmer light switch evolution
	DeviceNLFN      DeviceType = "NLFN" // Light switch with neutral
	DeviceNLG       DeviceType = "NLG"  // Gateway
	DeviceNLGS      DeviceType = "NLGS" // Gateway standalone
	DeviceNLIS      DeviceType = "NLIS" // Double light switch
	DeviceNLL       DeviceType = "NLL"  // Italian light switch with neutral
	DeviceNLLM      DeviceType = "NLLM" // Shutters
	DeviceNLLV      DeviceType = "NLLV" // Shutters
	DeviceNLM       DeviceType = "NLM"  // Light micro module
	DeviceNLP       DeviceType = "NLP"  // Plug
	DeviceNLPBS     DeviceType = "NLPBS"
	DeviceNLPC      DeviceType = "NLPC" // Connected energy meter
	DeviceNLPD      DeviceType = "NLPD" // Dry contact
	DeviceNLPM      DeviceType = "NLPM" // Mobile plug
	DeviceNLPO      DeviceType = "NLPO" // Connected contactor
	DeviceNLPS      DeviceType = "NLPS" // Smart load shedder
	DeviceNLPT      DeviceType = "NLPT" // Connected latching relay
	DeviceNLT       DeviceType = "NLT"  // Global remote control
	DeviceNLV       DeviceType = "NLV"  // Shutters
	DeviceNLAO      DeviceType = "NLAO" // Wireless batteryless light switch
	DeviceNLUO      DeviceType = "NLUO" // Plug-in dimmer switch
	DeviceNLUI      DeviceType = "NLUI" // In-wall on/off switch
	DeviceNLunknown DeviceType = "NLunknown"
	DeviceNLUF      DeviceType = "NLUF" // In-wall dimmer
	DeviceNLAS      DeviceType = "NLAS" // Wireless batteryless scene switch
	DeviceNLUP      DeviceType = "NLUP" // Power outlet
	DeviceNLLF      DeviceType = "NLLF" // Centralized ventilation control
	DeviceNLTS      DeviceType = "NLTS" // Motion sensor
	DeviceNLJ       DeviceType = "NLJ"  // Garage door opener
	DeviceNLDP      DeviceType = "NLDP" // Pocket remote

	// BTicino Classe 300 EOS
	DeviceBNCX DeviceType = "BNCX" // Internal panel (gateway)
	DeviceBNDL DeviceType = "BNDL" // Door lock
	DeviceBNEU DeviceType = "BNEU" // External unit
	DeviceBNSL DeviceType = "BNSL" // Staircase light
	DeviceBNCS DeviceType = "BNCS" // Controlled socket
	DeviceBNXM DeviceType = "BNXM" // X meter
	DeviceBNMS DeviceType = "BNMS" // Motorized shade
	DeviceBNAS DeviceType = "BNAS" // Automatic shutter
	DeviceBNAB DeviceType = "BNAB" // Automatic blind
	DeviceBNMH DeviceType = "BNMH" // MyHome server
	DeviceBNTH DeviceType = "BNTH" // Thermostat
	DeviceBNFC DeviceType = "BNFC" // Fan coil
	DeviceBNTR DeviceType = "BNTR" // Radiator
	DeviceBNIL DeviceType = "BNIL" // Intelligent light
	DeviceBNLD DeviceType = "BNLD" // Dimmer light

	// Bubbendorf shutters
	DeviceNBG DeviceType = "NBG" // Gateway
	DeviceNBO DeviceType = "NBO" // Orientable shutter
	DeviceNBR DeviceType = "NBR" // Roller shutter
	DeviceNBS DeviceType = "NBS" // Swing shutter

	// Somfy
	DeviceTPSRS DeviceType = "TPSRS" // io shutter

	// 3rd party
	DeviceBNS DeviceType = "BNS" // Smarther thermostat
	DeviceEBU DeviceType = "EBU" // EBU gas meter
	DeviceZ3L DeviceType = "Z3L" // Zigbee 3 light
)

// Capability is a named behavioral facet a module may support. A module's
// capability set is fully determined by its device type (plus its bridge's
// type) and never changes for the lifetime of the module.
type Capability string

// Capability tags.
const (
	CapabilityBattery     Capability = "battery"
	CapabilityBoiler      Capability = "boiler"
	CapabilityCamera      Capability = "camera"
	CapabilityCO2         Capability = "co2"
	CapabilityContactor   Capability = "contactor"
	CapabilityCooler      Capability = "cooler"
	CapabilityDimmer      Capability = "dimmer"
	CapabilityEnergy      Capability = "energy"
	CapabilityFan         Capability = "fan"
	CapabilityFirmware    Capability = "firmware"
	CapabilityFloodlight  Capability = "floodlight"
	CapabilityHealthIndex Capability = "health_index"
	CapabilityHumidity    Capability = "humidity"
	CapabilityMonitoring  Capability = "monitoring"
	CapabilityNoise       Capability = "noise"
	CapabilityOffload     Capability = "offload"
	CapabilityPower       Capability = "power"
	CapabilityPressure    Capability = "pressure"
	CapabilityRain        Capability = "rain"
	CapabilityRf          Capability = "rf"
	CapabilityShutter     Capability = "shutter"
	CapabilitySiren       Capability = "siren"
	CapabilityStatus      Capability = "status"
	CapabilitySwitch      Capability = "switch"
	CapabilityTemperature Capability = "temperature"
	CapabilityWifi        Capability = "wifi"
	CapabilityWind        Capability = "wind"
)

// Common capability bundles. Most mains-powered switching devices share the
// same behavior set, dimmers add brightness on top, and shutters share the
// positioning set.
var (
	switchCaps  = []Capability{CapabilityFirmware, CapabilityEnergy, CapabilityPower, CapabilitySwitch}
	dimmerCaps  = []Capability{CapabilityFirmware, CapabilityEnergy, CapabilityPower, CapabilitySwitch, CapabilityDimmer}
	shutterCaps = []Capability{CapabilityFirmware, CapabilityRf, CapabilityShutter}
	cameraCaps  = []Capability{CapabilityFirmware, CapabilityMonitoring, CapabilityCamera, CapabilityWifi}
)

// deviceCapabilities maps every known device type to its ordered capability
// set. The table is data, not branching logic: adding a device type is a
// data-only change. Unknown types resolve to an empty set.
var deviceCapabilities = map[DeviceType][]Capability{
	// Climate/Energy
	DeviceNAPlug:   {CapabilityFirmware, CapabilityRf, CapabilityWifi},
	DeviceNATherm1: {CapabilityFirmware, CapabilityRf, CapabilityBattery, CapabilityBoiler, CapabilityTemperature},
	DeviceNRV:      {CapabilityFirmware, CapabilityRf, CapabilityBattery, CapabilityTemperature},
	DeviceOTH:      {CapabilityFirmware, CapabilityWifi},
	DeviceOTM:      {CapabilityFirmware, CapabilityRf, CapabilityBattery, CapabilityBoiler, CapabilityTemperature},

	// Cameras/Security
	DeviceNACamera:     cameraCaps,
	DeviceNOC:          {CapabilityFloodlight, CapabilityFirmware, CapabilityMonitoring, CapabilityCamera, CapabilityWifi},
	DeviceNDB:          cameraCaps,
	DeviceNACamDoorTag: {CapabilityStatus, CapabilityFirmware, CapabilityBattery, CapabilityRf},
	DeviceNIS:          {CapabilityStatus, CapabilityMonitoring, CapabilityFirmware, CapabilityBattery, CapabilityRf, CapabilitySiren},
	DeviceNSD:          {CapabilityFirmware, CapabilityStatus},
	DeviceNCO:          {CapabilityFirmware, CapabilityStatus},

	// Weather
	DeviceNAMain:    {CapabilityTemperature, CapabilityHumidity, CapabilityCO2, CapabilityNoise, CapabilityPressure, CapabilityWifi, CapabilityFirmware},
	DeviceNAModule1: {CapabilityTemperature, CapabilityHumidity, CapabilityRf, CapabilityFirmware, CapabilityBattery},
	DeviceNAModule2: {CapabilityWind, CapabilityRf, CapabilityFirmware, CapabilityBattery},
	DeviceNAModule3: {CapabilityRain, CapabilityRf, CapabilityFirmware, CapabilityBattery},
	DeviceNAModule4: {CapabilityTemperature, CapabilityCO2, CapabilityHumidity, CapabilityRf, CapabilityFirmware, CapabilityBattery},
	DevicePublic:    {CapabilityTemperature, CapabilityHumidity, CapabilityPressure, CapabilityRain, CapabilityWind},

	// Home Coach
	DeviceNHC: {CapabilityTemperature, CapabilityHumidity, CapabilityCO2, CapabilityPressure, CapabilityNoise, CapabilityHealthIndex, CapabilityWifi, CapabilityFirmware},

	// Legrand
	DeviceNLG:       {CapabilityFirmware, CapabilityOffload, CapabilityWifi},
	DeviceNLGS:      {CapabilityFirmware, CapabilityOffload, CapabilityWifi},
	DeviceNLT:       {CapabilityDimmer, CapabilityFirmware, CapabilityBattery, CapabilitySwitch},
	DeviceNLP:       append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityOffload),
	DeviceNLPM:      append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityOffload),
	DeviceNLPO:      {CapabilityContactor, CapabilityOffload, CapabilityFirmware, CapabilityEnergy, CapabilityPower, CapabilitySwitch},
	DeviceNLPT:      append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityOffload),
	DeviceNLPBS:     switchCaps,
	DeviceNLF:       dimmerCaps,
	DeviceNLFN:      dimmerCaps,
	DeviceNLFE:      dimmerCaps,
	DeviceNLM:       switchCaps,
	DeviceNLIS:      switchCaps,
	DeviceNLD:       {CapabilityDimmer, CapabilityFirmware, CapabilityBattery, CapabilitySwitch},
	DeviceNLL:       append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityWifi),
	DeviceNLV:       shutterCaps,
	DeviceNLLV:      shutterCaps,
	DeviceNLLM:      shutterCaps,
	DeviceNLPC:      {CapabilityFirmware, CapabilityEnergy, CapabilityPower},
	DeviceNLE:       {CapabilityFirmware, CapabilityEnergy},
	DeviceNLPS:      {CapabilityFirmware, CapabilityEnergy, CapabilityPower},
	DeviceNLC:       append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityOffload),
	DeviceNLDD:      {CapabilityFirmware},
	DeviceNLUP:      switchCaps,
	DeviceNLAO:      {CapabilityFirmware, CapabilitySwitch},
	DeviceNLUI:      {CapabilityFirmware, CapabilitySwitch},
	DeviceNLUF:      dimmerCaps,
	DeviceNLUO:      dimmerCaps,
	DeviceNLLF:      {CapabilityFirmware, CapabilityFan, CapabilityPower, CapabilityEnergy},
	DeviceNLunknown: {},
	DeviceNLAS:      {},
	DeviceNLTS:      {},
	DeviceNLPD:      append(switchCaps[:len(switchCaps):len(switchCaps)], CapabilityOffload),
	DeviceNLJ:       shutterCaps,
	DeviceNLDP:      {},

	// BTicino
	DeviceBNDL: {},
	DeviceBNSL: switchCaps,
	DeviceBNCX: {},
	DeviceBNEU: {},
	DeviceBNCS: switchCaps,
	DeviceBNXM: {},
	DeviceBNMS: shutterCaps,
	DeviceBNAS: {CapabilityShutter},
	DeviceBNAB: shutterCaps,
	DeviceBNMH: {},
	DeviceBNTH: {CapabilityTemperature},
	DeviceBNFC: {CapabilityTemperature, CapabilityFan},
	DeviceBNTR: {CapabilityTemperature},
	DeviceBNIL: {CapabilitySwitch},
	DeviceBNLD: {CapabilityDimmer, CapabilitySwitch},

	// Bubbendorf
	DeviceNBG: {CapabilityFirmware, CapabilityWifi},
	DeviceNBR: shutterCaps,
	DeviceNBO: shutterCaps,
	DeviceNBS: shutterCaps,

	// Somfy
	DeviceTPSRS: shutterCaps,

	// 3rd party
	DeviceBNS: {CapabilityFirmware, CapabilityBoiler, CapabilityCooler, CapabilityWifi, CapabilityTemperature},
	DeviceEBU: {},
	DeviceZ3L: dimmerCaps,
}

// ResolveCapabilities returns the ordered capability set for a device type.
// The result is a fresh copy on every call; two calls for the same type
// always yield identical sets. Unknown device types resolve to nil rather
// than failing, for forward compatibility with new hardware.
func ResolveCapabilities(t DeviceType) []Capability {
	caps, ok := deviceCapabilities[t]
	if !ok {
		return nil
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// KnownDeviceType reports whether the device type appears in the static
// capability table.
func KnownDeviceType(t DeviceType) bool {
	_, ok := deviceCapabilities[t]
	return ok
}

// DeviceCategory is a coarse product classification used for filtering and
// for RequireModules checks.
type DeviceCategory string

// Device categories.
const (
	CategoryClimate DeviceCategory = "climate"
	CategoryCamera  DeviceCategory = "camera"
	CategorySiren   DeviceCategory = "siren"
	CategoryShutter DeviceCategory = "shutter"
	CategorySwitch  DeviceCategory = "switch"
	CategoryWeather DeviceCategory = "weather"
	CategoryAirCare DeviceCategory = "air_care"
	CategoryMeter   DeviceCategory = "meter"
	CategoryDimmer  DeviceCategory = "dimmer"
	CategoryOpening DeviceCategory = "opening"
)

// deviceCategories maps device types to their product category. Gateways and
// stub devices carry no category.
var deviceCategories = map[DeviceType]DeviceCategory{
	DeviceNRV:      CategoryClimate,
	DeviceNATherm1: CategoryClimate,
	DeviceOTM:      CategoryClimate,
	DeviceBNS:      CategoryClimate,
	DeviceBNTH:     CategoryClimate,
	DeviceBNFC:     CategoryClimate,
	DeviceBNTR:     CategoryClimate,

	DeviceNOC:      CategoryCamera,
	DeviceNACamera: CategoryCamera,
	DeviceNDB:      CategoryCamera,

	DeviceNACamDoorTag: CategoryOpening,
	DeviceNIS:          CategorySiren,

	DeviceNAMain:    CategoryWeather,
	DeviceNAModule1: CategoryWeather,
	DeviceNAModule2: CategoryWeather,
	DeviceNAModule3: CategoryWeather,
	DeviceNAModule4: CategoryWeather,

	DeviceNHC: CategoryAirCare,

	DeviceNLV:   CategoryShutter,
	DeviceNLLV:  CategoryShutter,
	DeviceNLLM:  CategoryShutter,
	DeviceNBR:   CategoryShutter,
	DeviceNBO:   CategoryShutter,
	DeviceNBS:   CategoryShutter,
	DeviceBNMS:  CategoryShutter,
	DeviceBNAS:  CategoryShutter,
	DeviceBNAB:  CategoryShutter,
	DeviceTPSRS: CategoryShutter,
	DeviceNLJ:   CategoryShutter,

	DeviceNLP:   CategorySwitch,
	DeviceNLPM:  CategorySwitch,
	DeviceNLPBS: CategorySwitch,
	DeviceNLIS:  CategorySwitch,
	DeviceNLL:   CategorySwitch,
	DeviceNLM:   CategorySwitch,
	DeviceNLC:   CategorySwitch,
	DeviceNLUP:  CategorySwitch,
	DeviceNLPO:  CategorySwitch,
	DeviceNLUI:  CategorySwitch,
	DeviceNLD:   CategorySwitch,
	DeviceNLDD:  CategorySwitch,
	DeviceNLPT:  CategorySwitch,
	DeviceNLPD:  CategorySwitch,
	DeviceBNSL:  CategorySwitch,
	DeviceBNCS:  CategorySwitch,
	DeviceBNIL:  CategorySwitch,

	DeviceNLFN: CategoryDimmer,
	DeviceNLF:  CategoryDimmer,
	DeviceNLFE: CategoryDimmer,
	DeviceNLUO: CategoryDimmer,
	DeviceNLUF: CategoryDimmer,
	DeviceZ3L:  CategoryDimmer,
	DeviceBNLD: CategoryDimmer,

	DeviceNLPC: CategoryMeter,
	DeviceNLE:  CategoryMeter,
	DeviceNLPS: CategoryMeter,
}

// CategoryOf returns the product category of a device type, if it has one.
func CategoryOf(t DeviceType) (DeviceCategory, bool) {
	c, ok := deviceCategories[t]
	return c, ok
}

// deviceDescriptions maps device types to vendor and model names.
var deviceDescriptions = map[DeviceType][2]string{
	DeviceNAPlug:       {"Netatmo", "Smart Thermostat Gateway"},
	DeviceNATherm1:     {"Netatmo", "Smart Thermostat"},
	DeviceNRV:          {"Netatmo", "Smart Valve"},
	DeviceOTH:          {"Netatmo", "OpenTherm Gateway"},
	DeviceOTM:          {"Netatmo", "OpenTherm Modulating Thermostat"},
	DeviceNOC:          {"Netatmo", "Smart Outdoor Camera"},
	DeviceNACamera:     {"Netatmo", "Smart Indoor Camera"},
	DeviceNSD:          {"Netatmo", "Smart Smoke Detector"},
	DeviceNIS:          {"Netatmo", "Smart Indoor Siren"},
	DeviceNACamDoorTag: {"Netatmo", "Smart Door/Window Sensor"},
	DeviceNDB:          {"Netatmo", "Smart Video Doorbell"},
	DeviceNCO:          {"Netatmo", "Smart Carbon Monoxide Alarm"},
	DeviceNAMain:       {"Netatmo", "Smart Home Weather Station"},
	DeviceNAModule1:    {"Netatmo", "Smart Outdoor Module"},
	DeviceNAModule2:    {"Netatmo", "Smart Anemometer"},
	DeviceNAModule3:    {"Netatmo", "Smart Rain Gauge"},
	DeviceNAModule4:    {"Netatmo", "Smart Indoor Module"},
	DevicePublic:       {"Netatmo", "Public Weather Station"},
	DeviceNHC:          {"Netatmo", "Smart Indoor Air Quality Monitor"},
	DeviceNLG:          {"Legrand", "Gateway"},
	DeviceNLGS:         {"Legrand", "Gateway standalone"},
	DeviceNLP:          {"Legrand", "Plug"},
	DeviceNLPM:         {"Legrand", "Mobile plug"},
	DeviceNLPBS:        {"Legrand", "British standard plugs"},
	DeviceNLF:          {"Legrand", "2 wire light switch/dimmer"},
	DeviceNLFE:         {"Legrand", "2 wire light switch/dimmer evolution"},
	DeviceNLIS:         {"Legrand", "Double switch"},
	DeviceNLFN:         {"Legrand", "Light switch/dimmer with neutral"},
	DeviceNLM:          {"Legrand", "Light micro module"},
	DeviceNLL:          {"Legrand", "Italian light switch with neutral"},
	DeviceNLV:          {"Legrand/BTicino", "Shutters"},
	DeviceNLLV:         {"Legrand/BTicino", "Shutters"},
	DeviceNLLM:         {"Legrand/BTicino", "Shutters"},
	DeviceNLPO:         {"Legrand", "Connected Contactor"},
	DeviceNLPT:         {"Legrand", "Connected Latching Relay"},
	DeviceNLPC:         {"Legrand", "Connected Energy Meter"},
	DeviceNLE:          {"Legrand", "Connected Ecometer"},
	DeviceNLPS:         {"Legrand", "Smart Load Shedder"},
	DeviceNLC:          {"Legrand", "Cable Outlet"},
	DeviceNLT:          {"Legrand", "Global Remote Control"},
	DeviceNLAS:         {"Legrand", "Wireless batteryless scene switch"},
	DeviceNLD:          {"Legrand", "Dimmer"},
	DeviceNLDD:         {"Legrand", "Dimmer"},
	DeviceNLUP:         {"Legrand", "Power outlet"},
	DeviceNLUO:         {"Legrand", "Plug-In dimmer switch"},
	DeviceNLUI:         {"Legrand", "In-wall switch"},
	DeviceNLTS:         {"Legrand", "Motion sensor"},
	DeviceNLUF:         {"Legrand", "In-Wall dimmer"},
	DeviceNLJ:          {"Legrand", "Garage door opener"},
	DeviceBNCX:         {"BTicino", "Internal Panel"},
	DeviceBNEU:         {"BTicino", "External Unit"},
	DeviceBNDL:         {"BTicino", "Door Lock"},
	DeviceBNSL:         {"BTicino", "Staircase Light"},
	DeviceBNMS:         {"BTicino", "Motorized Shade"},
	DeviceBNAS:         {"BTicino", "Automatic Shutter"},
	DeviceBNAB:         {"BTicino", "Automatic Blind"},
	DeviceBNMH:         {"BTicino", "MyHome server 1"},
	DeviceBNTH:         {"BTicino", "Thermostat"},
	DeviceBNFC:         {"BTicino", "Fan coil"},
	DeviceBNTR:         {"BTicino", "Module towel rail"},
	DeviceBNIL:         {"BTicino", "Intelligent light"},
	DeviceBNLD:         {"BTicino", "Dimmer"},
	DeviceNBG:          {"Bubbendorf", "Gateway"},
	DeviceNBR:          {"Bubbendorf", "Roller Shutter"},
	DeviceNBO:          {"Bubbendorf", "Orientable Shutter"},
	DeviceNBS:          {"Bubbendorf", "Swing Shutter"},
	DeviceTPSRS:        {"Somfy", "io Shutter"},
	DeviceBNS:          {"Smarther", "Smarther with Netatmo"},
	DeviceZ3L:          {"3rd Party", "Zigbee 3 Light"},
	DeviceEBU:          {"3rd Party", "EBU gas meter"},
	DeviceNLPD:         {"Drivia", "Dry contact"},
}

// Description returns the vendor and model names of a device type.
func (t DeviceType) Description() (vendor, model string, ok bool) {
	d, ok := deviceDescriptions[t]
	return d[0], d[1], ok
}
