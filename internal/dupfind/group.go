package dupfind

import (
	"cmp"
	"slices"
)

// groupBy drains in and buckets the descriptors by key. It also returns the
// number of descriptors received.
func groupBy[K comparable](in <-chan FileDescriptor, key func(FileDescriptor) K) (map[K][]FileDescriptor, int) {
	groups := make(map[K][]FileDescriptor)
	received := 0

	for fd := range in {
		received++

		k := key(fd)
		groups[k] = append(groups[k], fd)
	}

	return groups, received
}

func bySize(fd FileDescriptor) int64 { return fd.Size }

func byDigest(fd FileDescriptor) string { return string(fd.Digest) }

// keepShared returns a new map holding only buckets with more than one member.
func keepShared[K comparable](groups map[K][]FileDescriptor) map[K][]FileDescriptor {
	shared := make(map[K][]FileDescriptor, len(groups))

	for k, members := range groups {
		if len(members) > 1 {
			shared[k] = members
		}
	}

	return shared
}

// countMembers returns the total number of descriptors in all buckets.
func countMembers[K comparable](groups map[K][]FileDescriptor) int {
	n := 0
	for _, members := range groups {
		n += len(members)
	}

	return n
}

// buildGroups converts digest buckets into groups ordered by size
// (largest first) then digest, with member paths sorted.
func buildGroups(buckets map[string][]FileDescriptor) []Group {
	groups := make([]Group, 0, len(buckets))

	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}

		files := make([]string, 0, len(members))
		for _, fd := range members {
			files = append(files, fd.Path)
		}

		slices.Sort(files)

		groups = append(groups, Group{
			Digest: members[0].Digest.String(),
			Size:   members[0].Size,
			Files:  files,
		})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}

		return cmp.Compare(a.Digest, b.Digest)
	})

	return groups
}
