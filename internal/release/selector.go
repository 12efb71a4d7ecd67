package release

import (
	"strings"

	"github.com/tatara-dev/tatara/internal/catalog"
)

// Name markers used to score assets against a platform slot.
var (
	arch64Markers = []string{"x86_64", "win64", "x64", "amd64"}
	arch32Markers = []string{"x86_32", "win32", "i386", "ia32"}

	// osMarkers suggest the asset targets the catalog's OS family at
	// all; releases often mix in darwin/linux builds we must skip.
	osMarkers      = []string{"win", "windows", ".exe", ".msi"}
	foreignMarkers = []string{"darwin", "macos", "osx", "linux", "freebsd", ".deb", ".rpm", ".dmg", ".pkg.tar"}

	archiveSuffixes   = []string{".zip", ".7z", ".tar.gz", ".tgz", ".tar.xz", ".txz"}
	installerSuffixes = []string{".exe", ".msi", ".msix"}

	// nonBinarySuffixes are companions (checksums, signatures,
	// metadata) that must never be selected as the download itself.
	nonBinarySuffixes = []string{
		".txt", ".sha256", ".sha256sum", ".sha512", ".md5", ".md5sum",
		".asc", ".sig", ".sbom", ".json", ".yml", ".yaml", ".pem",
	}
)

// SelectBestAsset picks the release asset best matching a platform
// slot. Selection is deterministic: the same asset list and tag always
// yield the same asset, with ties broken by original list order.
//
// Scoring, in order:
//  1. drop assets clearly built for a foreign OS
//  2. among arch-marker matches, prefer archives over raw binaries
//  3. with no arch match, fall back to an OS-tagged asset
//  4. last resort by size: largest for the 64-bit slot, smallest for
//     the 32-bit slot (bigger binaries more often bundle 64-bit deps)
//
// The generic slot skips arch scoring and prefers any archive over an
// installer.
func SelectBestAsset(assets []Asset, platformTag string) (Asset, bool) {
	if len(assets) == 0 {
		return Asset{}, false
	}

	native := filterForeign(assets)
	if len(native) == 0 {
		return Asset{}, false
	}

	if platformTag == catalog.PlatformGeneric {
		return selectGeneric(native)
	}

	var markers, rivalMarkers []string
	if platformTag == catalog.Platform32Bit {
		markers, rivalMarkers = arch32Markers, arch64Markers
	} else {
		markers, rivalMarkers = arch64Markers, arch32Markers
	}

	if matched := filterByMarkers(native, markers); len(matched) > 0 {
		return preferArchive(matched), true
	}

	// Nothing tagged for our arch; an asset tagged for the rival arch
	// is a worse bet than an untagged one, so drop those.
	untagged := excludeByMarkers(native, rivalMarkers)
	if len(untagged) == 0 {
		return Asset{}, false
	}

	if osTagged := filterByMarkers(untagged, osMarkers); len(osTagged) > 0 {
		return preferArchive(osTagged), true
	}

	if platformTag == catalog.Platform32Bit {
		return pickBySize(untagged, false), true
	}
	return pickBySize(untagged, true), true
}

func filterForeign(assets []Asset) []Asset {
	var out []Asset
	for _, a := range assets {
		name := strings.ToLower(a.Name)
		if containsAny(name, foreignMarkers) || hasAnySuffix(name, nonBinarySuffixes) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func filterByMarkers(assets []Asset, markers []string) []Asset {
	var out []Asset
	for _, a := range assets {
		if containsAny(strings.ToLower(a.Name), markers) {
			out = append(out, a)
		}
	}
	return out
}

func excludeByMarkers(assets []Asset, markers []string) []Asset {
	var out []Asset
	for _, a := range assets {
		if !containsAny(strings.ToLower(a.Name), markers) {
			out = append(out, a)
		}
	}
	return out
}

// preferArchive returns the first archive-format asset, else the first
// asset. First-in-list wins so selection is order-stable.
func preferArchive(assets []Asset) Asset {
	for _, a := range assets {
		if hasAnySuffix(strings.ToLower(a.Name), archiveSuffixes) {
			return a
		}
	}
	return assets[0]
}

// selectGeneric prefers archives over installers for the
// architecture-agnostic slot.
func selectGeneric(assets []Asset) (Asset, bool) {
	for _, a := range assets {
		if hasAnySuffix(strings.ToLower(a.Name), archiveSuffixes) {
			return a, true
		}
	}
	for _, a := range assets {
		if !hasAnySuffix(strings.ToLower(a.Name), installerSuffixes) {
			return a, true
		}
	}
	return assets[0], true
}

// pickBySize picks the largest (or smallest) asset; a strict
// comparison keeps the earliest asset on equal sizes.
func pickBySize(assets []Asset, largest bool) Asset {
	best := assets[0]
	for _, a := range assets[1:] {
		if largest && a.Size > best.Size {
			best = a
		}
		if !largest && a.Size < best.Size {
			best = a
		}
	}
	return best
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
