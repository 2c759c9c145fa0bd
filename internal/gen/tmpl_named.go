package gen

// Templates of the three named headers. DECODER placeholders are
// instantiated once per decoder kind.

const namedBasesHeader = `%(FILE_HEADER)s
%(NOT_TCB_MESSAGE)s
#ifndef %(IFDEF_NAME)s
#define %(IFDEF_NAME)s

#include "native_client/src/trusted/validator_arm/actual_classes.h"
#include "native_client/src/trusted/validator_arm/baseline_classes.h"
#include "%(FILENAME_BASE)s_baselines.h"
#include "native_client/src/trusted/validator_arm/named_class_decoder.h"

namespace nacl_arm_test {

/*
 * Define named class decoders for each generated baseline class decoder.
 * Baseline-vs-baseline tests use them to compare the generated baseline
 * with the hand-written one.
 */

`

const generatedBaselineClass = `class Named%(gen_base)s
    : public NamedClassDecoder {
 public:
  Named%(gen_base)s()
    : NamedClassDecoder(decoder_, "%(gen_base)s")
  {}

 private:
  nacl_arm_dec::%(gen_base)s decoder_;

  NACL_DISALLOW_COPY_AND_ASSIGN(Named%(gen_base)s);
};

`

const namedBasesFooter = `} // namespace nacl_arm_test
#endif  // %(IFDEF_NAME)s
`

const namedClassesHeader = `%(FILE_HEADER)s
%(NOT_TCB_MESSAGE)s
#ifndef %(IFDEF_NAME)s
#define %(IFDEF_NAME)s

#include "native_client/src/trusted/validator_arm/actual_classes.h"
#include "native_client/src/trusted/validator_arm/baseline_classes.h"
#include "%(FILENAME_BASE)s_actuals.h"
#include "%(FILENAME_BASE)s_named_bases.h"
#include "native_client/src/trusted/validator_arm/named_class_decoder.h"

`

const ruleClassesHeader = `/*
 * Define rule decoder classes.
 */
namespace nacl_arm_dec {

`

const ruleClassDecl = `class %(DECODER_class)s
    : public %(DECODER)s {
};

`

const ruleClassSym = `%(DECODER_class)s`

const ruleClassesFooter = `} // nacl_arm_dec

`

const namedDecodersHeader = `namespace nacl_arm_test {

/*
 * Define named class decoders for each class decoder.
 * The main purpose of these classes is to introduce
 * instances that are named specifically to the class decoder
 * and/or rule that was used to parse them. This makes testing
 * much easier in that error messages use these named classes
 * to clarify what row in the corresponding table was used
 * to select this decoder.
 */

`

const namedClassDeclare = `class Named%(DECODER_class)s
    : public NamedClassDecoder {
 public:
  Named%(DECODER_class)s()
    : NamedClassDecoder(decoder_, "%(DECODER)s %(rule)s")
  {}

 private:
  nacl_arm_dec::%(DECODER_class)s decoder_;

  NACL_DISALLOW_COPY_AND_ASSIGN(Named%(DECODER_class)s);
};

`

const namedClassDeclareSym = `Named%(DECODER_class)s`

const namedClassesFooter = `// Defines the default parse action if the table doesn't define
// an action.
class NotImplementedNamed : public NamedClassDecoder {
 public:
  NotImplementedNamed()
    : NamedClassDecoder(decoder_, "not implemented")
  {}

 private:
  nacl_arm_dec::NotImplemented decoder_;

  NACL_DISALLOW_COPY_AND_ASSIGN(NotImplementedNamed);
};

} // namespace nacl_arm_test
#endif  // %(IFDEF_NAME)s
`

const namedDecoderHeader = `%(FILE_HEADER)s
%(NOT_TCB_MESSAGE)s
#ifndef %(IFDEF_NAME)s
#define %(IFDEF_NAME)s

#include "native_client/src/trusted/validator_arm/decode.h"
#include "%(FILENAME_BASE)s_named_classes.h"
#include "native_client/src/trusted/validator_arm/named_class_decoder.h"

namespace nacl_arm_test {

// Defines a (named) decoder class selector for instructions
class Named%(decoder_name)s : nacl_arm_dec::DecoderState {
 public:
  explicit Named%(decoder_name)s();

  // Parses the given instruction, returning the named class
  // decoder to use.
  const NamedClassDecoder& decode_named(
     const nacl_arm_dec::Instruction) const;

  // Parses the given instruction, returning the class decoder
  // to use.
  virtual const nacl_arm_dec::ClassDecoder& decode(
     const nacl_arm_dec::Instruction) const;

  // The following fields define the set of class decoders
  // that can be returned by the API function "decode_named". They
  // are created once as instance fields, and then returned
  // by the table methods above. This speeds up the code since
  // the class decoders need to only be built once (and reused
  // for each call to "decode_named").
`

const decoderStateField = `  const Named%(DECODER_class)s %(DECODER_instance)s;
`

const decoderStateFieldName = `%(DECODER_instance)s`

const decoderStateDecoderComments = `
 private:

  // The following list of methods correspond to each decoder table,
  // and implements the pattern matching of the corresponding bit
  // patterns. After matching the corresponding bit patterns, they
  // either call other methods in this list (corresponding to another
  // decoder table), or they return the instance field that implements
  // the class decoder that should be used to decode the particular
  // instruction.
`

const decoderStateDecoder = `  inline const NamedClassDecoder& decode_%(table_name)s(
      const nacl_arm_dec::Instruction inst) const;
`

const namedDecoderFooter = `
  // Defines default action if parse tables don't define what action
  // to take.
  const NotImplementedNamed not_implemented_;
};

} // namespace nacl_arm_test
#endif  // %(IFDEF_NAME)s
`
