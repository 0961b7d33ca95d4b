//go:build ppc64le
// +build ppc64le

package arch

func init() {
	Local = POWERPC64
}
