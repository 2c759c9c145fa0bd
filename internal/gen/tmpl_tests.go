package gen

// Templates of the generated test file.

const testCCHeader = `%(FILE_HEADER)s
%(NOT_TCB_MESSAGE)s
#include "gtest/gtest.h"
#include "native_client/src/trusted/validator_arm/actual_vs_baseline.h"
#include "native_client/src/trusted/validator_arm/baseline_vs_baseline.h"
#include "native_client/src/trusted/validator_arm/actual_classes.h"
#include "native_client/src/trusted/validator_arm/baseline_classes.h"
#include "native_client/src/trusted/validator_arm/inst_classes_testers.h"
#include "%(FILENAME_BASE)s_named_decoder.h"

using nacl_arm_dec::Instruction;
using nacl_arm_dec::ClassDecoder;
using nacl_arm_dec::Register;
using nacl_arm_dec::RegisterList;

namespace nacl_arm_test {

// The following classes are derived class decoder testers that
// add row pattern constraints and decoder restrictions to each tester.
// This is done so that it can be used to make sure that the
// corresponding pattern is not tested for cases that would be excluded
// due to row checks, or restrictions specified by the row restrictions.

`

const constraintTesterClassHeader = `// %(row_comment)s
class %(base_tester)s
    : public %(base_base_tester)s {
 public:
  %(base_tester)s(const NamedClassDecoder& decoder)
    : %(base_base_tester)s(decoder) {}
  virtual bool PassesParsePreconditions(
      nacl_arm_dec::Instruction inst,
      const NamedClassDecoder& decoder);
`

const constraintTesterRestrictionsHeader = `  virtual bool ApplySanityChecks(nacl_arm_dec::Instruction inst,
                                 const NamedClassDecoder& decoder);
`

const constraintTesterClassClose = `};

`

const constraintTesterParseHeader = `bool %(base_tester)s
::PassesParsePreconditions(
     nacl_arm_dec::Instruction inst,
     const NamedClassDecoder& decoder) {
`

const rowConstraintsHeader = `
  // Check that row patterns apply to pattern being checked.
`

const patternConstraintRestrictionsHeader = `
  // Check pattern restrictions of row.
`

const constraintCheck = `  if (%(code)s) return false;
`

const constraintTesterClassFooter = `
  // Check other preconditions defined for the base decoder.
  return %(base_base_tester)s::
      PassesParsePreconditions(inst, decoder);
}

`

const safetyTesterHeader = `bool %(base_tester)s
::ApplySanityChecks(nacl_arm_dec::Instruction inst,
                    const NamedClassDecoder& decoder) {
  NC_PRECOND(%(base_base_tester)s::
               ApplySanityChecks(inst, decoder));
`

const safetyTesterCheck = `
  // safety: %(comment)s
  EXPECT_TRUE(!(%(code)s));
`

const defsSafetyCheck = `
  // defs: %(comment)s;
  EXPECT_TRUE(decoder.defs(inst).IsSame(%(code)s));
`

const safetyTesterFooter = `
  return true;
}

`

const testerClassHeader = `// The following are derived class decoder testers for decoder actions
// associated with a pattern of an action. These derived classes introduce
// a default constructor that automatically initializes the expected decoder
// to the corresponding instance in the generated DecoderState.

// Decoder state whose instances the testers below wrap.
static const Named%(decoder_name)s state_;

`

const testerClass = `// %(row_comment)s
class %(decoder_tester)s
    : public %(base_tester)s {
 public:
  %(decoder_tester)s()
    : %(base_tester)s(
      state_.%(baseline_instance)s)
  {}
};

`

const testHarness = `// Defines a gtest testing harness for tests.
class %(decoder_name)sTests : public ::testing::Test {
 protected:
  %(decoder_name)sTests() {}
};

// Defines a gtest testing harness for baseline-vs-baseline tests.
class %(decoder_name)sBaselineTests : public ::testing::Test {
 protected:
  %(decoder_name)sBaselineTests() {}
};

// The following functions test each pattern specified in parse
// decoder tables.

`

const testFunctionActualVsBaseline = `// %(row_comment)s
TEST_F(%(decoder_name)sTests,
       %(decoder_tester)s_Test%(test_pattern)s) {
  %(decoder_tester)s baseline_tester;
  %(named_actual_class)s actual;
  ActualVsBaselineTester a_vs_b_tester(actual, baseline_tester);
  a_vs_b_tester.Test("%(pattern)s");
}

`

const testFunctionBaseline = `// %(row_comment)s
TEST_F(%(decoder_name)sTests,
       %(decoder_tester)s_Test%(test_pattern)s) {
  %(decoder_tester)s tester;
  tester.Test("%(pattern)s");
}

`

const testFunctionBaselineVsBaseline = `// %(row_comment)s
TEST_F(%(decoder_name)sBaselineTests,
       BvB_%(decoder_tester)s_Test%(test_pattern)s) {
  %(decoder_tester)s old_base_tester;
  Named%(gen_base)s gen_base_tester;
  BaselineVsBaselineTester b_vs_b_tester(gen_base_tester, old_base_tester);
  b_vs_b_tester.Test("%(pattern)s");
}

`

const testCCFooter = `} // namespace nacl_arm_test

int main(int argc, char* argv[]) {
  testing::InitGoogleTest(&argc, argv);
  return RUN_ALL_TESTS();
}
`
