// Package compatibility detects source-visible API breaks between two
// snapshots of a Java-style API surface.
//
// # Overview
//
// A Comparator walks an old and a new apimodel.Model in lockstep. Packages
// and classes pair by fully-qualified name, members by erased signature;
// there is no fuzzy matching and no rename detection. Every difference
// becomes an Incompatibility value. The comparator is pure: it never
// mutates either model, so many comparisons may run in parallel.
//
// A Classifier then maps each finding to a Severity through a Policy, demotes
// hidden kinds and baselined findings, and counts the result into a Report.
// A run fails iff Report.ErrorCount > 0.
//
// # Usage Example
//
//	oldModel, _ := snapshot.ParseFile("api/current.txt")
//	newModel, _ := snapshot.ParseFile("build/api.txt")
//
//	findings := compatibility.Compare(oldModel, newModel)
//	report := compatibility.Classify(findings, nil)
//
//	for _, e := range report.Findings(compatibility.SeverityError) {
//		fmt.Printf("  [%s] %s: %s\n", e.Kind, e.Location, e.Detail)
//	}
//	if report.Failed() {
//		os.Exit(1)
//	}
//
// # Finding Kinds
//
// Each kind has a stable numeric code usable wherever a kind name is:
//
//	 1 PackageRemoved             error
//	 2 ClassRemoved               error
//	 3 ClassKindChanged           error
//	 4 ClassVisibilityReduced     error
//	 5 ClassBecameFinal           error
//	 6 ClassBecameAbstract        error
//	 7 SupertypeRemoved           error
//	 8 InterfaceRemoved           error
//	 9 TypeParameterBoundChanged  error
//	10 MemberRemoved              error
//	11 MemberVisibilityReduced    error
//	12 MemberStaticnessChanged    error
//	13 MemberBecameFinal          error
//	14 ReturnTypeChanged          error
//	15 ExceptionAdded             error
//	16 AbstractMemberAdded        error
//	17 ConstantValueChanged       warning
//	18 FieldTypeChanged           error
//	19 ClassAdded                 info
//	20 MemberAdded                info
//	21 CovariantReturnChange      info
//
// # Inheritance
//
// Matching is inheritance-aware. A method or field that disappears from a
// class but is still inherited from a supertype in the new model is not
// removed. A method that appears in a class but was already declared by one
// of its old ancestors is not a new obligation. An added exception that is a
// subtype of an exception the member already declared is not reported.
//
// An interface removed from a class's implements list is only reported
// when it is also gone from the class's resolved ancestors in the new model.
//
// # Policy File
//
// Severities can be overridden per kind, by name or by code:
//
//	version: v1
//	werror: false
//	severities:
//	  ConstantValueChanged: error
//	  CovariantReturnChange: hidden
//	hide:
//	  - ClassAdded
//	  - "17"
//
// # Baseline
//
// A baseline file lists findings that have been reviewed and accepted:
//
//	// Accepted API incompatibilities. One 'Kind location' per line.
//	MemberRemoved p.C.run()
//	ConstantValueChanged p.C.X
//
// Baselined findings are kept in the report as hidden entries.
package compatibility
