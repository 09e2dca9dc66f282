package orchestrate

import (
	"github.com/ardakoroglu/synreach/internal/iface"
	"github.com/ardakoroglu/synreach/internal/scan"
)

// resolveInterface validates setting.IfIndex against the host's live
// interfaces (§4.6 step 1) and fills in IfName/SrcMAC when the caller
// left them unset.
func resolveInterface(setting *scan.Setting) (*iface.Info, error) {
	info, err := iface.ByIndex(setting.IfIndex)
	if err != nil {
		return nil, err
	}
	if setting.IfName == "" {
		setting.IfName = info.Name
	}
	if len(setting.SrcMAC) == 0 {
		setting.SrcMAC = info.HardwareAddr
	}
	return info, nil
}
