package compatibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
)

func parseModel(t *testing.T, text string) *apimodel.Model {
	t.Helper()
	m, err := snapshot.Parse(text)
	require.NoError(t, err)
	return m
}

func breaking(findings []Incompatibility) []Kind {
	out := []Kind{}
	for _, f := range findings {
		if !f.Kind.IsInformational() {
			out = append(out, f.Kind)
		}
	}
	return out
}

const libraryAPI = `
package com.example.widget {
  class public Widget<T extends java.lang.Number> extends com.example.widget.Base implements java.io.Serializable {
    ctor public Widget();
    ctor protected Widget(java.lang.String, int...);
    method public static final java.lang.String describe(java.util.List<T>) throws java.io.IOException;
    method public <E> E pick(java.util.Map<java.lang.String, E>);
    method protected abstract void onResize(int, int);
    field public static final int MAX = 10;
    field public static final java.lang.String NAME = "w";
  }
  class public abstract Base {
    method public void close();
  }
  interface public Listener {
    method public void onEvent(com.example.widget.Widget<?>);
    method public default void onIdle();
  }
  enum public final Mode {
    method public static com.example.widget.Mode valueOf(java.lang.String);
  }
  @interface public Marker {
  }
}
`

func TestCompare_IdenticalModels(t *testing.T) {
	m := parseModel(t, libraryAPI)
	assert.Empty(t, Compare(m, m))

	// Two independent parses of the same text compare equal too.
	assert.Empty(t, Compare(m, parseModel(t, libraryAPI)))
}

func TestCompare_MemberRemovedScenario(t *testing.T) {
	oldModel := parseModel(t, `package p { class C { method public void run(); } }`)
	newModel := parseModel(t, `package p { class C { } }`)

	findings := Compare(oldModel, newModel)
	require.Len(t, findings, 1)
	assert.Equal(t, KindMemberRemoved, findings[0].Kind)
	assert.Equal(t, "p.C.run()", findings[0].Location)
	assert.Equal(t, SeverityError, findings[0].DefaultSeverity)

	report := Classify(findings, nil)
	assert.Equal(t, 1, report.ErrorCount)
	assert.True(t, report.Failed())
}

func TestCompare_ConstantValueChangedScenario(t *testing.T) {
	oldModel := parseModel(t, `package p { class C { field public static final int X = 1; } }`)
	newModel := parseModel(t, `package p { class C { field public static final int X = 2; } }`)

	findings := Compare(oldModel, newModel)
	require.Len(t, findings, 1)
	assert.Equal(t, KindConstantValueChanged, findings[0].Kind)
	assert.Equal(t, "p.C.X", findings[0].Location)

	report := Classify(findings, nil)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Equal(t, 1, report.WarningCount)
	assert.False(t, report.Failed())

	hidden := Classify(findings, []Kind{KindConstantValueChanged})
	assert.Equal(t, 0, hidden.ErrorCount)
	assert.Equal(t, 0, hidden.WarningCount)
	assert.Equal(t, 1, hidden.HiddenCount)
	require.Len(t, hidden.Entries, 1)
	assert.Equal(t, SeverityHidden, hidden.Entries[0].Severity)
}

func TestCompare_Rules(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want []Kind
	}{
		{
			name: "visibility widened",
			old:  `package p { class public C { method protected void f(); } }`,
			new:  `package p { class public C { method public void f(); } }`,
			want: []Kind{},
		},
		{
			name: "visibility narrowed",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method protected void f(); } }`,
			want: []Kind{KindMemberVisibilityReduced},
		},
		{
			name: "abstract method added to interface",
			old:  `package p { interface public I { } }`,
			new:  `package p { interface public I { method public void f(); } }`,
			want: []Kind{KindAbstractMemberAdded},
		},
		{
			name: "default method added to interface",
			old:  `package p { interface public I { } }`,
			new:  `package p { interface public I { method public default void f(); } }`,
			want: []Kind{},
		},
		{
			name: "abstract method added to abstract class",
			old:  `package p { class public abstract C { } }`,
			new:  `package p { class public abstract C { method public abstract void f(); } }`,
			want: []Kind{KindAbstractMemberAdded},
		},
		{
			name: "method became abstract",
			old:  `package p { class public abstract C { method public void f(); } }`,
			new:  `package p { class public abstract C { method public abstract void f(); } }`,
			want: []Kind{KindAbstractMemberAdded},
		},
		{
			name: "default method lost its body",
			old:  `package p { interface public I { method public default void f(); } }`,
			new:  `package p { interface public I { method public void f(); } }`,
			want: []Kind{KindAbstractMemberAdded},
		},
		{
			name: "concrete method added to final class",
			old:  `package p { class public final C { } }`,
			new:  `package p { class public final C { method public void f(); } }`,
			want: []Kind{},
		},
		{
			name: "class kind changed",
			old:  `package p { class public C { } }`,
			new:  `package p { interface public C { } }`,
			want: []Kind{KindClassKindChanged},
		},
		{
			name: "class visibility narrowed",
			old:  `package p { class public C { } }`,
			new:  `package p { class protected C { } }`,
			want: []Kind{KindClassVisibilityReduced},
		},
		{
			name: "class became final",
			old:  `package p { class public C { } }`,
			new:  `package p { class public final C { } }`,
			want: []Kind{KindClassBecameFinal},
		},
		{
			name: "class lost final",
			old:  `package p { class public final C { } }`,
			new:  `package p { class public C { } }`,
			want: []Kind{},
		},
		{
			name: "class became abstract",
			old:  `package p { class public C { } }`,
			new:  `package p { class public abstract C { } }`,
			want: []Kind{KindClassBecameAbstract},
		},
		{
			name: "superclass removed",
			old:  `package p { class public B { } class public C extends p.B { } }`,
			new:  `package p { class public B { } class public C { } }`,
			want: []Kind{KindSupertypeRemoved},
		},
		{
			name: "superclass replaced by a subclass of the old one",
			old:  `package p { class public A { } class public B extends p.A { } class public C extends p.A { } }`,
			new:  `package p { class public A { } class public B extends p.A { } class public C extends p.B { } }`,
			want: []Kind{},
		},
		{
			name: "interface removed",
			old:  `package p { interface public I { } class public C implements p.I { } }`,
			new:  `package p { interface public I { } class public C { } }`,
			want: []Kind{KindInterfaceRemoved},
		},
		{
			name: "interface still inherited through superclass",
			old:  `package p { interface public I { } class public B { } class public C extends p.B implements p.I { } }`,
			new:  `package p { interface public I { } class public B implements p.I { } class public C extends p.B { } }`,
			want: []Kind{},
		},
		{
			name: "external interface removed",
			old:  `package p { class public C implements java.io.Serializable { } }`,
			new:  `package p { class public C { } }`,
			want: []Kind{KindInterfaceRemoved},
		},
		{
			name: "type parameter bound tightened",
			old:  `package p { class public C<T> { } }`,
			new:  `package p { class public C<T extends java.lang.Number> { } }`,
			want: []Kind{KindTypeParameterBoundChanged},
		},
		{
			name: "type parameter bound loosened",
			old:  `package p { class public C<T extends java.lang.Number> { } }`,
			new:  `package p { class public C<T> { } }`,
			want: []Kind{},
		},
		{
			name: "type parameter added",
			old:  `package p { class public C<T> { } }`,
			new:  `package p { class public C<T, U> { } }`,
			want: []Kind{KindTypeParameterBoundChanged},
		},
		{
			name: "class generified",
			old:  `package p { class public C { } }`,
			new:  `package p { class public C<T> { } }`,
			want: []Kind{},
		},
		{
			name: "method generified",
			old:  `package p { class public C { method public void f(java.lang.Object); } }`,
			new:  `package p { class public C { method public <T> void f(T); } }`,
			want: []Kind{},
		},
		{
			name: "type parameter removed",
			old:  `package p { class public C<T, U> { } }`,
			new:  `package p { class public C<T> { } }`,
			want: []Kind{KindTypeParameterBoundChanged},
		},
		{
			name: "method type parameter gained a bound",
			old:  `package p { class public C { method public <T extends java.lang.Number> void f(T); } }`,
			new:  `package p { class public C { method public <T extends java.lang.Number & java.lang.Comparable<T>> void f(T); } }`,
			want: []Kind{KindTypeParameterBoundChanged},
		},
		{
			name: "static added",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method public static void f(); } }`,
			want: []Kind{KindMemberStaticnessChanged},
		},
		{
			name: "static removed",
			old:  `package p { class public C { field public static int x; } }`,
			new:  `package p { class public C { field public int x; } }`,
			want: []Kind{KindMemberStaticnessChanged},
		},
		{
			name: "method became final",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method public final void f(); } }`,
			want: []Kind{KindMemberBecameFinal},
		},
		{
			name: "method became final in final class",
			old:  `package p { class public final C { method public void f(); } }`,
			new:  `package p { class public final C { method public final void f(); } }`,
			want: []Kind{},
		},
		{
			name: "static method became final",
			old:  `package p { class public C { method public static void f(); } }`,
			new:  `package p { class public C { method public static final void f(); } }`,
			want: []Kind{},
		},
		{
			name: "field became final",
			old:  `package p { class public C { field public int x; } }`,
			new:  `package p { class public C { field public final int x; } }`,
			want: []Kind{KindMemberBecameFinal},
		},
		{
			name: "return type changed",
			old:  `package p { class public C { method public int f(); } }`,
			new:  `package p { class public C { method public long f(); } }`,
			want: []Kind{KindReturnTypeChanged},
		},
		{
			name: "return type narrowed to Object subtype",
			old:  `package p { class public C { method public java.lang.Object f(); } }`,
			new:  `package p { class public C { method public java.lang.String f(); } }`,
			want: []Kind{},
		},
		{
			name: "return type narrowed within model",
			old:  `package p { class public A { } class public B extends p.A { } class public C { method public p.A f(); } }`,
			new:  `package p { class public A { } class public B extends p.A { } class public C { method public p.B f(); } }`,
			want: []Kind{},
		},
		{
			name: "return type widened",
			old:  `package p { class public A { } class public B extends p.A { } class public C { method public p.B f(); } }`,
			new:  `package p { class public A { } class public B extends p.A { } class public C { method public p.A f(); } }`,
			want: []Kind{KindReturnTypeChanged},
		},
		{
			name: "generic instantiation only",
			old:  `package p { class public C { method public java.util.List<java.lang.String> f(); } }`,
			new:  `package p { class public C { method public java.util.List<java.lang.CharSequence> f(); } }`,
			want: []Kind{},
		},
		{
			name: "exception added",
			old:  `package p { class public C { method public void f() throws java.io.IOException; } }`,
			new:  `package p { class public C { method public void f() throws java.io.IOException, java.lang.InterruptedException; } }`,
			want: []Kind{KindExceptionAdded},
		},
		{
			name: "exception removed",
			old:  `package p { class public C { method public void f() throws java.io.IOException; } }`,
			new:  `package p { class public C { method public void f(); } }`,
			want: []Kind{},
		},
		{
			name: "exception narrowed to subtype",
			old: `package p { class public E extends java.lang.Exception { } class public S extends p.E { }
			  class public C { ctor public C() throws p.E; } }`,
			new: `package p { class public E extends java.lang.Exception { } class public S extends p.E { }
			  class public C { ctor public C() throws p.S; } }`,
			want: []Kind{},
		},
		{
			name: "unchecked exception added",
			old:  `package p { class public U extends java.lang.RuntimeException { } class public C { method public void f(); } }`,
			new:  `package p { class public U extends java.lang.RuntimeException { } class public C { method public void f() throws p.U; } }`,
			want: []Kind{},
		},
		{
			name: "RuntimeException added",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method public void f() throws java.lang.RuntimeException; } }`,
			want: []Kind{},
		},
		{
			name: "Error added",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method public void f() throws java.lang.Error; } }`,
			want: []Kind{},
		},
		{
			name: "undeclared platform unchecked exception added",
			old:  `package p { class public C { method public void f(); } }`,
			new:  `package p { class public C { method public void f() throws java.lang.IllegalArgumentException; } }`,
			want: []Kind{KindExceptionAdded},
		},
		{
			name: "field type changed",
			old:  `package p { class public C { field public int x; } }`,
			new:  `package p { class public C { field public long x; } }`,
			want: []Kind{KindFieldTypeChanged},
		},
		{
			name: "constant rewritten in hex",
			old:  `package p { class public C { field public static final int X = 16; } }`,
			new:  `package p { class public C { field public static final int X = 0x10; } }`,
			want: []Kind{},
		},
		{
			name: "long constant suffix",
			old:  `package p { class public C { field public static final long X = 5L; } }`,
			new:  `package p { class public C { field public static final long X = 5; } }`,
			want: []Kind{},
		},
		{
			name: "constant value changed",
			old:  `package p { class public C { field public static final int X = 0x10; } }`,
			new:  `package p { class public C { field public static final int X = 17; } }`,
			want: []Kind{KindConstantValueChanged},
		},
		{
			name: "constant value removed",
			old:  `package p { class public C { field public static final int X = 1; } }`,
			new:  `package p { class public C { field public static final int X; } }`,
			want: []Kind{KindConstantValueChanged},
		},
		{
			name: "constructor removed",
			old:  `package p { class public C { ctor public C(int); } }`,
			new:  `package p { class public C { ctor public C(long); } }`,
			want: []Kind{KindMemberRemoved},
		},
		{
			name: "overload matched by erased parameters",
			old:  `package p { class public C<T> { method public void f(T); method public void f(java.util.List<java.lang.String>); } }`,
			new:  `package p { class public C<E> { method public void f(E); method public void f(java.util.List<?>); } }`,
			want: []Kind{},
		},
		{
			name: "varargs and array match",
			old:  `package p { class public C { method public void f(int...); } }`,
			new:  `package p { class public C { method public void f(int[]); } }`,
			want: []Kind{},
		},
		{
			name: "method moved to superclass",
			old:  `package p { class public B { } class public C extends p.B { method public void f(); } }`,
			new:  `package p { class public B { method public void f(); } class public C extends p.B { } }`,
			want: []Kind{},
		},
		{
			name: "abstract method redeclared from old ancestor",
			old:  `package p { interface public I { method public void f(); } interface public J extends p.I { } }`,
			new:  `package p { interface public I { method public void f(); } interface public J extends p.I { method public void f(); } }`,
			want: []Kind{},
		},
		{
			name: "class removed",
			old:  `package p { class public C { } class public D { } }`,
			new:  `package p { class public D { } }`,
			want: []Kind{KindClassRemoved},
		},
		{
			name: "package removed",
			old:  `package p { class public C { method public void f(); } } package q { class public D { } }`,
			new:  `package q { class public D { } }`,
			want: []Kind{KindPackageRemoved},
		},
		{
			name: "package emptied",
			old:  `package p { class public C { } } package q { class public D { } }`,
			new:  `package p { } package q { class public D { } }`,
			want: []Kind{KindPackageRemoved},
		},
		{
			name: "class and package added",
			old:  `package p { class public C { } }`,
			new:  `package p { class public C { } class public D { } } package q { class public E { } }`,
			want: []Kind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Compare(parseModel(t, tt.old), parseModel(t, tt.new))
			assert.Equal(t, tt.want, breaking(findings), "findings: %v", findings)
		})
	}
}

func TestCompare_Informational(t *testing.T) {
	oldModel := parseModel(t, `package p { class public C { method public java.lang.Object f(); } }`)
	newModel := parseModel(t, `package p {
	  class public C { method public java.lang.String f(); method public void g(); }
	  class public D { }
	}`)

	findings := Compare(oldModel, newModel)
	require.Len(t, findings, 3)
	assert.Equal(t, KindCovariantReturnChange, findings[0].Kind)
	assert.Equal(t, "p.C.f()", findings[0].Location)
	assert.Equal(t, KindMemberAdded, findings[1].Kind)
	assert.Equal(t, "p.C.g()", findings[1].Location)
	assert.Equal(t, KindClassAdded, findings[2].Kind)
	assert.Equal(t, "p.D", findings[2].Location)

	report := Classify(findings, nil)
	assert.Equal(t, 3, report.InfoCount)
	assert.False(t, report.Failed())
}

func TestCompare_DeterministicOrder(t *testing.T) {
	oldModel := parseModel(t, `
package b { class public Z { method public void b(); method public void a(); field public int c; } }
package a { class public Y { } class public X { method public void m(int); } }
`)
	newModel := parseModel(t, `package b { class public Z { field public long c; } } package a { }`)

	var locations []string
	for _, f := range Compare(oldModel, newModel) {
		locations = append(locations, f.Kind.String()+" "+f.Location)
	}
	assert.Equal(t, []string{
		"PackageRemoved a",
		"MemberRemoved b.Z.a()",
		"MemberRemoved b.Z.b()",
		"FieldTypeChanged b.Z.c",
	}, locations)

	for i := 0; i < 5; i++ {
		again := Compare(oldModel, newModel)
		for j, f := range again {
			assert.Equal(t, locations[j], f.Kind.String()+" "+f.Location)
		}
	}
}

func TestCompare_MemberLocationUsesErasedSignature(t *testing.T) {
	oldModel := parseModel(t, `package p { class public C<T extends java.lang.Number> {
	  method public void put(java.util.Map<java.lang.String, T>, T...);
	} }`)
	newModel := parseModel(t, `package p { class public C<T extends java.lang.Number> { } }`)

	findings := Compare(oldModel, newModel)
	require.Len(t, findings, 1)
	assert.Equal(t, "p.C.put(java.util.Map, java.lang.Number[])", findings[0].Location)
	assert.Equal(t, "put(java.util.Map, java.lang.Number[])", findings[0].Member)
}

func TestSameConstant(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"16", "0x10", true},
		{"0X10", "020", true},
		{"-1", "-1L", true},
		{"1_000", "1000", true},
		{"0xFFFFFFFFFFFFFFFFL", "-1", true},
		{`"w"`, `"w"`, true},
		{`"16"`, "16", false},
		{"1.0", "1", false},
		{"1", "2", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"="+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, sameConstant(tt.a, tt.b))
		})
	}
}
