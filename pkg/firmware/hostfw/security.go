// SecurityArch is grounded on the teacher's checkArtifactSignatureIsValid
// (pkg/uki/common.go), the only place the teacher inspects the running
// firmware's secure-boot signature databases via
// github.com/foxboron/go-uefi/efi.
package hostfw

// shimGUID is the vendor GUID Shim registers its Shim-Lock protocol
// variables under; its presence signals a Shim-mediated boot chain.
const shimGUID = "605dab50-e046-4300-abb6-3dd810dd8b23"

// Security implements firmware.SecurityArch against a real host: it has
// no way to literally replace the SECURITY_ARCH protocol from
// userspace. ShimPresent reports whether Shim's MokListRT variable
// exists, and InstallShimOverride never reports an override as
// installed, whether or not Shim is present.
type Security struct {
	variables *Variables
	present   bool
	checked   bool
}

// NewSecurity builds a Security capability over variables.
func NewSecurity(variables *Variables) *Security {
	return &Security{variables: variables}
}

func (s *Security) ShimPresent() bool {
	if !s.checked {
		_, _, err := s.variables.GetVariable(shimGUID, "MokListRT")
		s.present = err == nil
		s.checked = true
	}
	return s.present
}

// InstallShimOverride has nothing to install on a real host; Shim's
// protocol hooks are installed by Shim itself during firmware boot, long
// before this process runs. It returns installed=false, which the
// secureboot.Guard treats as a no-op, preserving the "ShimAbsent becomes
// a no-op" semantics of §4.F even when Shim is present but the override
// is firmware-owned rather than process-owned.
func (s *Security) InstallShimOverride() (bool, error) {
	if !s.ShimPresent() {
		return false, nil
	}
	return false, nil
}

func (s *Security) UninstallOverride() error {
	return nil
}
