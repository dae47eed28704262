// Package validator checks feature tracking documents and classifies findings.
//
// Validate applies its rules in a fixed order so that output is
// deterministic:
//
//  1. Root structure (InvalidRoot short-circuits everything else;
//     missing project/total/completed attributes are warnings).
//  2. Category presence, names and emptiness, then every feature of each
//     category in document order.
//  3. Id uniqueness across the whole document.
//  4. Counter consistency between the root attributes and the features.
//  5. An optional project JSON Schema over the document's JSON projection.
//
// Only ERROR findings make a document invalid. Counter mismatches are
// warnings because the repair package can fix them.
//
// Validation never touches the filesystem; LoadFailure converts a load
// error into the single top-level finding reported for unreadable input.
package validator
