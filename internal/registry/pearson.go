package registry

// pearsonTable is this implementation's own 0-255 permutation for the
// 8-bit Pearson hash used to bucket driver records. spec.md explicitly
// treats the hash function as an opaque external collaborator ("Pearson-
// hash computation"), so any full permutation of 0..255 satisfies the
// registry's contract — this is a standard fixed permutation, not a
// cryptographic choice.
var pearsonTable = [256]byte{
	0x60, 0x34, 0xd7, 0xbe, 0x57, 0x8d, 0xe8, 0x4a, 0x86, 0x73, 0x22, 0xc5, 0x4e, 0x01, 0x69, 0x96,
	0xde, 0x9f, 0xaf, 0xb0, 0xdc, 0xb9, 0xff, 0x18, 0x04, 0x0a, 0x68, 0xf7, 0x43, 0xf1, 0x1e, 0xc9,
	0x4f, 0x27, 0xa0, 0x4c, 0x53, 0x38, 0xfb, 0x7e, 0x0d, 0xbf, 0xc0, 0x13, 0xfc, 0x28, 0x35, 0xc7,
	0x82, 0x1a, 0xb7, 0xf9, 0x3d, 0x72, 0x7f, 0xe7, 0x3b, 0xe9, 0x24, 0xba, 0x03, 0x92, 0x76, 0x98,
	0x07, 0xe5, 0xa5, 0x49, 0xf5, 0x36, 0x9d, 0x14, 0xa6, 0xd2, 0x21, 0x8c, 0xe1, 0xdd, 0x78, 0xec,
	0xe6, 0xfd, 0x2e, 0xea, 0x06, 0x85, 0xd0, 0x5f, 0xf2, 0x16, 0xcb, 0xf3, 0x29, 0x05, 0xa4, 0x56,
	0xe4, 0x2d, 0x83, 0xb6, 0x6d, 0xe2, 0x25, 0xf4, 0x3c, 0x09, 0xaa, 0x7b, 0xae, 0x6c, 0x0c, 0x2a,
	0xfe, 0x0e, 0x5d, 0x26, 0x6b, 0xb2, 0x4d, 0x30, 0x9c, 0xd3, 0x93, 0x70, 0x8e, 0x37, 0x8b, 0x51,
	0x31, 0x52, 0x74, 0xd5, 0xda, 0x1b, 0x46, 0xce, 0xa3, 0xbd, 0x79, 0xcc, 0xdb, 0x1c, 0x1d, 0x81,
	0xf0, 0xd8, 0xca, 0xee, 0x02, 0x23, 0x17, 0x63, 0x40, 0x6f, 0x48, 0xfa, 0xab, 0xa7, 0xef, 0xd6,
	0x33, 0xd9, 0xe0, 0x44, 0x9b, 0x9a, 0xcd, 0xf8, 0x87, 0x9e, 0x94, 0xe3, 0x55, 0x62, 0x75, 0x50,
	0xbc, 0x15, 0x6e, 0xa9, 0x5e, 0xed, 0xeb, 0xa1, 0xac, 0xb8, 0xa2, 0x99, 0xc3, 0x00, 0xc6, 0x2f,
	0xc8, 0x7d, 0x95, 0x5a, 0x42, 0xdf, 0x45, 0x20, 0x1f, 0xb3, 0x19, 0x58, 0xc2, 0x0b, 0x71, 0xa8,
	0x89, 0x7c, 0xb5, 0xad, 0x65, 0xcf, 0xd4, 0x6a, 0x3a, 0x64, 0x61, 0x7a, 0x10, 0xb1, 0x11, 0x3e,
	0x47, 0xb4, 0x67, 0x39, 0x32, 0x5c, 0x4b, 0xc1, 0x3f, 0x84, 0xc4, 0x12, 0x5b, 0xd1, 0x77, 0x80,
	0xf6, 0x91, 0x54, 0x8a, 0x2c, 0x0f, 0x97, 0x8f, 0x66, 0x90, 0xbb, 0x08, 0x2b, 0x88, 0x41, 0x59,
}

// pearsonHash returns the 8-bit Pearson hash of the ASCII bytes in s.
func pearsonHash(s string) byte {
	var h byte
	for i := 0; i < len(s); i++ {
		h = pearsonTable[h^s[i]]
	}
	return h
}
