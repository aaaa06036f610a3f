// Package units names data sizes in bytes. The short names are base 10, the
// Kib/Mib/Gib names are base 2 for sizes that go to allocators.
package units

const (
	Kilobyte = 1000
	Kb       = Kilobyte
	Megabyte = Kilobyte * Kilobyte
	Mb       = Megabyte
	Gigabyte = Megabyte * Kilobyte
	Gb       = Gigabyte

	Kib = 1 << 10
	Mib = Kib << 10
	Gib = Mib << 10
)
