//go:build equate_release

package equate

const debugAssertions = false
