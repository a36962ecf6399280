// Package analyzer holds the domain types shared by the page analyzer subsystems.
//
// A URL is a normalized scheme://authority address registered once and never mutated.
// A Check is one recorded fetch of that address with the SEO signals extracted from the
// returned markup. Persistence, fetching, and the HTTP surface depend on the interfaces
// declared here rather than on each other.
package analyzer
