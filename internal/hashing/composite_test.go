package hashing

import "testing"

func TestCompositeDeterministic(t *testing.T) {
	md := Metadata{Path: "/a/B.TXT", Size: 1234, Modified: 1000, Created: 900}
	content := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	mask := Size | Created | Modified | FileName | Content

	a := Composite(mask, md, &content)
	b := Composite(mask, md, &content)
	if a != b {
		t.Fatalf("composite not deterministic: %x != %x", a, b)
	}
}

func TestCompositeDisabledComponentOmitsNotZeroes(t *testing.T) {
	md := Metadata{Path: "/a/file", Size: 10}

	withSize := Composite(Size, md, nil)

	md2 := md
	md2.Size = 0
	withoutSizeValue := Composite(Size, md2, nil)

	if withSize == withoutSizeValue {
		t.Fatalf("expected composites for different sizes to differ")
	}

	// An all-zero fingerprint: if a disabled Content bit fed a zero
	// placeholder, {Size} would hash the same bytes as this and collide.
	content := [8]byte{}
	sizeOnly := Composite(Size, md, nil)
	sizeAndContent := Composite(Size|Content, md, &content)
	if sizeOnly == sizeAndContent {
		t.Fatalf("expected {Size} and {Size,Content} namespaces to differ")
	}
}

func TestCompositeCaseFoldedFileName(t *testing.T) {
	upper := Composite(FileName, Metadata{Path: "/a/FILE.TXT"}, nil)
	lower := Composite(FileName, Metadata{Path: "/a/file.txt"}, nil)
	if upper != lower {
		t.Fatalf("expected case-folded filenames to produce the same composite")
	}
}

func TestCompositeOrderIsCanonical(t *testing.T) {
	md := Metadata{Path: "/a/file", Size: 5, Modified: 7, Created: 9}
	mask := Size | Modified

	a := Composite(mask, md, nil)

	md2 := Metadata{Path: "/a/file", Size: 7, Modified: 5, Created: 9}
	b := Composite(mask, md2, nil)

	if a == b {
		t.Fatalf("swapping size/modified values should change the composite given fixed field order")
	}
}
