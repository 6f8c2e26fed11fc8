// Package sasreader reads the binary layout of SAS7BDAT files.
//
// There is no official documentation of the SAS7BDAT format.  This code
// is based on previous efforts to reverse-engineer the format, in
// particular:
//
// https://cran.r-project.org/web/packages/sas7bdat/vignettes/sas7bdat.pdf
//
// The file header decides how the rest of the file is laid out: whether
// offsets are 4 or 8 bytes wide, whether the header fields are padded,
// the byte order, and the text encoding.  These are decoded once into a
// LayoutFlags value that every later step receives.
//
// Pages are read one at a time with a PageIterator.  Each page exposes
// its subheader pointer table and the data region after it.  A Reader
// combines these to deliver the logical rows of the file as raw bytes,
// expanding RLE compressed rows when needed.  Rows are not split into
// columns.
//
// Slices returned by pages, subheaders and rows borrow from the current
// page buffer, and are only valid until the next page is read.  Use
// Reader.Read, or copy the bytes, to keep rows longer.
//
// ScanPages decodes the pages of a file in parallel, giving each worker
// its own section of the file.
package sasreader
